package repository

import (
	"context"

	"OtoDist/model"

	"gorm.io/gorm"
)

// SubmissionRepository 定义投稿相关的数据库操作接口
type SubmissionRepository interface {
	// Create 持久化一条投稿记录（含内嵌歌曲），返回生成的ID
	Create(ctx context.Context, submission *model.Submission) (int64, error)

	// GetByID 根据ID获取投稿；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Submission, error)

	// FindByCode 按预约码查询；email 非空时同时匹配邮箱。结果按创建时间倒序
	FindByCode(ctx context.Context, code, email string) ([]*model.Submission, error)

	// FindByEmail 按邮箱查询，供凭据核对使用
	FindByEmail(ctx context.Context, email string) ([]*model.Submission, error)

	// FindAll 返回全部投稿，按创建时间倒序
	FindAll(ctx context.Context) ([]*model.Submission, error)

	// UpdateStatus 更新投稿状态，返回是否有记录被更新
	UpdateStatus(ctx context.Context, id int64, status model.SubmissionStatus) (bool, error)

	// Delete 删除投稿及其全部歌曲记录
	Delete(ctx context.Context, id int64) error
}

// gormSubmissionRepository GORM 实现
type gormSubmissionRepository struct {
	db *gorm.DB
}

// NewGormSubmissionRepository 创建 GORM 投稿仓库
func NewGormSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &gormSubmissionRepository{db: db}
}

// Create 持久化投稿；歌曲作为关联一并写入
func (r *gormSubmissionRepository) Create(ctx context.Context, submission *model.Submission) (int64, error) {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		return 0, err
	}
	return submission.ID, nil
}

// GetByID 根据ID获取投稿
func (r *gormSubmissionRepository) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Preload("Songs").
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// FindByCode 按预约码（和可选邮箱）查询
func (r *gormSubmissionRepository) FindByCode(ctx context.Context, code, email string) ([]*model.Submission, error) {
	query := r.db.WithContext(ctx).
		Preload("Songs").
		Where("reservation_code = ?", code)
	if email != "" {
		query = query.Where("email = ?", email)
	}

	var submissions []*model.Submission
	err := query.Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}

// FindByEmail 按邮箱查询
func (r *gormSubmissionRepository) FindByEmail(ctx context.Context, email string) ([]*model.Submission, error) {
	var submissions []*model.Submission
	err := r.db.WithContext(ctx).
		Preload("Songs").
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// FindAll 返回全部投稿
func (r *gormSubmissionRepository) FindAll(ctx context.Context) ([]*model.Submission, error) {
	var submissions []*model.Submission
	err := r.db.WithContext(ctx).
		Preload("Songs").
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// UpdateStatus 更新投稿状态
func (r *gormSubmissionRepository) UpdateStatus(ctx context.Context, id int64, status model.SubmissionStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除投稿及其歌曲
func (r *gormSubmissionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&model.Song{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Submission{}).Error
	})
}
