package reservation

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"OtoDist/core/apperr"
	"OtoDist/logger"
	"OtoDist/model"
)

// Download 提供单曲音频的流式下载内容
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// DownloadAudio opens the stored master for one song of a submission. Track
// numbers are 1-based; 0 means the first track.
func (s *Service) DownloadAudio(ctx context.Context, id int64, track int) (*Download, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if sub == nil {
		return nil, apperr.NotFound("ファイルが見つかりませんでした")
	}

	if track < 1 {
		track = 1
	}
	var song *model.Song
	for i := range sub.Songs {
		if sub.Songs[i].TrackNo == track {
			song = &sub.Songs[i]
			break
		}
	}
	if song == nil || song.AudioURL == "" {
		return nil, apperr.NotFound("ファイルが見つかりませんでした")
	}

	key := s.store.KeyFromURL(song.AudioURL)
	if key == "" {
		return nil, apperr.NotFound("ファイルが見つかりませんでした")
	}

	body, info, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "audio/wav"
	}

	logger.Info("开始下载音频",
		logger.Int64("albumId", id),
		logger.Int("track", track),
		logger.String("key", key))

	return &Download{
		Body:        body,
		Filename:    downloadFilename(song, key),
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

// downloadFilename rebuilds a human-readable filename; the stored key only
// carries a timestamp and a random fragment.
func downloadFilename(song *model.Song, key string) string {
	ext := filepath.Ext(key)
	if ext == "" {
		ext = ".wav"
	}
	title := song.Title
	if title == "" {
		title = fmt.Sprintf("track-%d", song.TrackNo)
	}
	return fmt.Sprintf("%02d - %s%s", song.TrackNo, title, ext)
}
