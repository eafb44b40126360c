package gc

import (
	"context"
	"time"

	"OtoDist/logger"
	"OtoDist/repository"
	"OtoDist/storage"
)

// Sweeper removes bucket objects no submission references anymore. These
// orphans come from the accepted failure window of the upload saga: files
// stored, record never written, process gone before compensation ran.
type Sweeper struct {
	store  storage.ObjectStore
	repo   repository.SubmissionRepository
	cutoff time.Duration
	dryRun bool
}

// NewSweeper creates a sweeper. Objects younger than cutoff are never
// touched so an in-flight submission's files survive the sweep.
func NewSweeper(store storage.ObjectStore, repo repository.SubmissionRepository, cutoff time.Duration, dryRun bool) *Sweeper {
	return &Sweeper{
		store:  store,
		repo:   repo,
		cutoff: cutoff,
		dryRun: dryRun,
	}
}

// Sweep returns how many orphaned objects were removed (or would be, in a
// dry run).
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	referenced, err := s.referencedKeys(ctx)
	if err != nil {
		return 0, err
	}

	deadline := time.Now().Add(-s.cutoff)
	removed := 0

	for _, prefix := range []string{storage.FolderCovers + "/", storage.FolderAudio + "/"} {
		objects, err := s.store.List(ctx, prefix)
		if err != nil {
			return removed, err
		}

		for _, object := range objects {
			if _, ok := referenced[object.Key]; ok {
				continue
			}
			if object.LastModified.After(deadline) {
				continue
			}

			if s.dryRun {
				logger.Info("孤儿对象（dry-run，不删除）",
					logger.String("key", object.Key),
					logger.Int64("size", object.Size))
				removed++
				continue
			}

			if err := s.store.Delete(ctx, object.Key); err != nil {
				logger.Error("删除孤儿对象失败",
					logger.String("key", object.Key),
					logger.ErrorField(err))
				continue
			}
			logger.Info("已删除孤儿对象", logger.String("key", object.Key))
			removed++
		}
	}

	return removed, nil
}

func (s *Sweeper) referencedKeys(ctx context.Context) (map[string]struct{}, error) {
	submissions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{})
	add := func(url string) {
		if key := s.store.KeyFromURL(url); key != "" {
			referenced[key] = struct{}{}
		}
	}
	for _, sub := range submissions {
		add(sub.CoverURL)
		for _, song := range sub.Songs {
			add(song.AudioURL)
		}
	}

	return referenced, nil
}
