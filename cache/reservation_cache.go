package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OtoDist/logger"
	"OtoDist/model"

	"github.com/redis/go-redis/v9"
)

const reservationTTL = 5 * time.Minute

// ReservationCache 缓存按预约码查询的结果，减轻热点查询对数据库的压力。
// client 为 nil 时所有操作都直接透传（开发环境可不配 Redis）。
type ReservationCache struct {
	client *redis.Client
}

func NewReservationCache(client *redis.Client) *ReservationCache {
	return &ReservationCache{client: client}
}

func reservationKey(code string) string {
	return fmt.Sprintf("reservation:code:%s", code)
}

// GetByCode 返回缓存的查询结果；未命中或缓存不可用时 ok 为 false
func (c *ReservationCache) GetByCode(ctx context.Context, code string) ([]*model.Submission, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, reservationKey(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("读取预约缓存失败", logger.String("code", code), logger.ErrorField(err))
		}
		return nil, false
	}

	var submissions []*model.Submission
	if err := json.Unmarshal(data, &submissions); err != nil {
		logger.Warn("解析预约缓存失败", logger.String("code", code), logger.ErrorField(err))
		return nil, false
	}

	return submissions, true
}

// SetByCode 写入查询结果，失败只记录日志
func (c *ReservationCache) SetByCode(ctx context.Context, code string, submissions []*model.Submission) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(submissions)
	if err != nil {
		logger.Warn("序列化预约缓存失败", logger.String("code", code), logger.ErrorField(err))
		return
	}

	if err := c.client.Set(ctx, reservationKey(code), data, reservationTTL).Err(); err != nil {
		logger.Warn("写入预约缓存失败", logger.String("code", code), logger.ErrorField(err))
	}
}

// Invalidate 在创建或删除后移除对应预约码的缓存
func (c *ReservationCache) Invalidate(ctx context.Context, code string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, reservationKey(code)).Err(); err != nil {
		logger.Warn("删除预约缓存失败", logger.String("code", code), logger.ErrorField(err))
	}
}
