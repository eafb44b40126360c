package repository

import (
	"context"
	"database/sql"

	"OtoDist/model"
)

// StatsRepository 管理端汇总查询，走原生SQL连接
type StatsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

// SubmissionStats 统计投稿总量及各服务套餐、后付款的数量
func (r *StatsRepository) SubmissionStats(ctx context.Context) (*model.SubmissionStats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(service_type = 'audioOnly'), 0),
		COALESCE(SUM(service_type = 'fullService'), 0),
		COALESCE(SUM(pay_later), 0)
	FROM submissions`

	stats := &model.SubmissionStats{}
	err := r.DB.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.AudioOnly,
		&stats.FullService,
		&stats.PayLater,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
