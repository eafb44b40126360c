package reservation

import (
	"context"
	"strings"

	"OtoDist/core/apperr"
	"OtoDist/core/auth"
	"OtoDist/logger"
	"OtoDist/model"
)

// 记录里的邮箱在投稿时已统一小写，查询入参做同样的归一化
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Lookup resolves a key to submissions. The configured admin secret returns
// the whole collection; any other key is treated as a reservation code,
// optionally narrowed by email. A non-admin lookup matching nothing is a
// NotFound error.
func (s *Service) Lookup(ctx context.Context, key, email string) ([]*model.Submission, bool, error) {
	email = normalizeEmail(email)

	if auth.CheckAdminSecret(key, s.adminSecret) {
		all, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, true, apperr.Persistence(err)
		}
		return all, true, nil
	}

	// Code-only lookups are cacheable; email-narrowed ones are not worth it.
	if email == "" {
		if cached, ok := s.cache.GetByCode(ctx, key); ok {
			return cached, false, nil
		}
	}

	matches, err := s.repo.FindByCode(ctx, key, email)
	if err != nil {
		return nil, false, apperr.Persistence(err)
	}
	if len(matches) == 0 {
		return nil, false, apperr.NotFound("予約情報が見つかりませんでした")
	}

	if email == "" {
		s.cache.SetByCode(ctx, key, matches)
	}
	return matches, false, nil
}

// CheckCredentials returns the submissions whose stored hash matches the
// supplied password for the given email.
func (s *Service) CheckCredentials(ctx context.Context, email, password string) ([]*model.Submission, error) {
	rows, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	var matches []*model.Submission
	for _, sub := range rows {
		if auth.CheckPasswordHash(password, sub.PasswordHash) {
			matches = append(matches, sub)
		}
	}
	if len(matches) == 0 {
		return nil, apperr.NotFound("予約情報が見つかりませんでした")
	}
	return matches, nil
}

// ListAll returns the full collection for a verified admin caller.
func (s *Service) ListAll(ctx context.Context, key string) ([]*model.Submission, error) {
	if !auth.CheckAdminSecret(key, s.adminSecret) {
		return nil, apperr.Authorization()
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return all, nil
}

// SoftDelete flips the submission to cancelled. Already-absent ids are a
// NotFound outcome, not an error crash.
func (s *Service) SoftDelete(ctx context.Context, key string, id int64) error {
	if !auth.CheckAdminSecret(key, s.adminSecret) {
		return apperr.Authorization()
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.Persistence(err)
	}
	if sub == nil {
		return apperr.NotFound("")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return apperr.Persistence(err)
	}
	if !updated {
		return apperr.NotFound("")
	}

	s.cache.Invalidate(ctx, sub.ReservationCode)
	logger.Info("投稿已标记取消", logger.Int64("albumId", id))
	return nil
}

// HardDelete removes the row first, then best-effort deletes every
// referenced object. Object delete failures are logged, not retried; the
// gc sweep picks up what is left behind.
func (s *Service) HardDelete(ctx context.Context, key string, id int64) error {
	if !auth.CheckAdminSecret(key, s.adminSecret) {
		return apperr.Authorization()
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.Persistence(err)
	}
	if sub == nil {
		return apperr.NotFound("")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Persistence(err)
	}
	s.cache.Invalidate(ctx, sub.ReservationCode)

	urls := []string{sub.CoverURL}
	for _, song := range sub.Songs {
		urls = append(urls, song.AudioURL)
	}
	for _, u := range urls {
		objKey := s.store.KeyFromURL(u)
		if objKey == "" {
			continue
		}
		if err := s.store.Delete(ctx, objKey); err != nil {
			logger.Error("删除投稿对象失败",
				logger.Int64("albumId", id),
				logger.String("key", objKey),
				logger.ErrorField(err))
		}
	}

	logger.Info("投稿已删除", logger.Int64("albumId", id), logger.Int("objects", len(urls)))
	return nil
}
