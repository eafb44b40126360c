package reservation

import (
	"context"
	"sync"
	"time"

	"OtoDist/cache"
	"OtoDist/core/apperr"
	"OtoDist/core/auth"
	"OtoDist/core/form"
	"OtoDist/logger"
	"OtoDist/model"
	"OtoDist/repository"
	"OtoDist/storage"
)

// maxConcurrentUploads 限制单次投稿的音频上传并发
const maxConcurrentUploads = 5

// Service orchestrates the submission pipeline: validated intake in, object
// uploads plus one database row out. Uploads happen before the row is
// written; on a persistence failure every object uploaded for the request is
// deleted best-effort. The reverse order is deliberate: an orphaned object
// is cheap and collectable by the gc sweep, a row pointing at a missing
// object is not.
type Service struct {
	store       storage.ObjectStore
	repo        repository.SubmissionRepository
	cache       *cache.ReservationCache
	adminSecret string
}

func NewService(store storage.ObjectStore, repo repository.SubmissionRepository, c *cache.ReservationCache, adminSecret string) *Service {
	return &Service{
		store:       store,
		repo:        repo,
		cache:       c,
		adminSecret: adminSecret,
	}
}

// Result 成功投稿后返回给客户端的信息
type Result struct {
	AlbumID         int64    `json:"albumId"`
	ReservationCode string   `json:"reservationCode"`
	ImageURL        string   `json:"imageUrl"`
	AudioURLs       []string `json:"audioUrls"`
}

type uploaded struct {
	key string
	url string
}

// Submit runs the forward steps of the saga and unwinds on failure.
func (s *Service) Submit(ctx context.Context, in *form.SubmissionInput) (*Result, error) {
	start := time.Now()

	// Step 1: cover upload. A failure here aborts with no state to unwind.
	cover, err := s.uploadFile(ctx, storage.FolderCovers, in.Cover)
	if err != nil {
		return nil, err
	}
	compensations := []uploaded{cover}

	// Step 2: concurrent audio fan-out. Order across songs is irrelevant;
	// each song keeps its own URL.
	audioResults, err := s.uploadAudioFiles(ctx, in.Songs)
	compensations = append(compensations, audioResults...)
	if err != nil {
		s.unwind(compensations)
		return nil, err
	}

	// Step 3: assemble the record.
	passwordHash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.unwind(compensations)
		return nil, err
	}
	submission := buildSubmission(in, cover.url, audioResults, passwordHash)

	// Step 4: persist, or unwind every object uploaded above.
	id, err := s.repo.Create(ctx, submission)
	if err != nil {
		logger.Error("投稿记录写入失败，开始补偿删除",
			logger.String("code", in.ReservationCode),
			logger.Int("objects", len(compensations)),
			logger.ErrorField(err))
		s.unwind(compensations)
		return nil, apperr.Persistence(err)
	}

	s.cache.Invalidate(ctx, in.ReservationCode)

	audioURLs := make([]string, len(audioResults))
	for i, a := range audioResults {
		audioURLs[i] = a.url
	}

	logger.Info("投稿创建成功",
		logger.Int64("albumId", id),
		logger.String("code", in.ReservationCode),
		logger.Int("songs", len(audioURLs)),
		logger.Duration("elapsed", time.Since(start)))

	return &Result{
		AlbumID:         id,
		ReservationCode: in.ReservationCode,
		ImageURL:        cover.url,
		AudioURLs:       audioURLs,
	}, nil
}

func (s *Service) uploadFile(ctx context.Context, folder string, in *form.FileInput) (uploaded, error) {
	f, err := in.Header.Open()
	if err != nil {
		return uploaded{}, apperr.StorageWrite(err)
	}
	defer f.Close()

	key, url, err := s.store.Put(ctx, folder, in.Header.Filename, f, in.Header.Size, in.ContentType)
	if err != nil {
		return uploaded{}, err
	}
	return uploaded{key: key, url: url}, nil
}

// uploadAudioFiles uploads every song's master with bounded concurrency.
// The returned slice holds whatever was successfully uploaded, even on
// error, so the caller can unwind all of it.
func (s *Service) uploadAudioFiles(ctx context.Context, songs []form.SongInput) ([]uploaded, error) {
	results := make([]uploaded, len(songs))
	errs := make([]error, len(songs))

	slots := make(chan struct{}, maxConcurrentUploads)
	var wg sync.WaitGroup
	for i := range songs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			up, err := s.uploadFile(ctx, storage.FolderAudio, songs[i].Audio)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = up
		}(i)
	}
	wg.Wait()

	var done []uploaded
	for _, up := range results {
		if up.key != "" {
			done = append(done, up)
		}
	}
	for _, err := range errs {
		if err != nil {
			return done, err
		}
	}
	return done, nil
}

// unwind deletes uploaded objects in reverse order. Each failure is logged
// independently and never escalated; the original error stays the one the
// caller sees. A background context is used so compensation still runs when
// the request context is already gone.
func (s *Service) unwind(ups []uploaded) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := len(ups) - 1; i >= 0; i-- {
		if err := s.store.Delete(ctx, ups[i].key); err != nil {
			logger.Error("补偿删除对象失败",
				logger.String("key", ups[i].key),
				logger.ErrorField(err))
		}
	}
}

func buildSubmission(in *form.SubmissionInput, coverURL string, audio []uploaded, passwordHash string) *model.Submission {
	submission := &model.Submission{
		ReservationCode: in.ReservationCode,
		Email:           in.Email,
		PasswordHash:    passwordHash,

		AlbumNameDomestic:      in.AlbumNameDomestic,
		AlbumNameInternational: in.AlbumNameInternational,
		ArtistNameKana:         in.ArtistNameKana,
		ArtistNameEnglish:      in.ArtistNameEnglish,
		VersionInfo:            in.VersionInfo,
		ReleaseDate:            in.ReleaseDate,

		CoverURL: coverURL,

		Platforms:         in.Platforms,
		ExcludedCountries: in.ExcludedCountries,

		RightsAgreement:    in.RightsAgreement,
		ReReleaseAgreement: in.ReReleaseAgreement,
		PlatformAgreement:  in.PlatformAgreement,
		AllAgreement:       in.AllAgreement,

		ServiceType:   model.ServiceType(in.ServiceType),
		PaymentStatus: string(model.StatusPending),
		PaymentAmount: model.DefaultPaymentAmount,
		PayLater:      in.PayLater,
		Status:        model.StatusPending,
	}

	for i, song := range in.Songs {
		submission.Songs = append(submission.Songs, model.Song{
			TrackNo:              song.TrackNo,
			Title:                song.Title,
			TitleEn:              song.TitleEn,
			DurationMin:          song.DurationMin,
			DurationSec:          song.DurationSec,
			Genre:                song.Genre,
			Language:             song.Language,
			MainArtists:          song.MainArtists,
			ParticipatingArtists: song.ParticipatingArtists,
			FeaturingArtists:     song.FeaturingArtists,
			MixingEngineers:      song.MixingEngineers,
			RecordingEngineers:   song.RecordingEngineers,
			Producers:            song.Producers,
			Lyricists:            song.Lyricists,
			Composers:            song.Composers,
			Arrangers:            song.Arrangers,
			IsRemake:             song.IsRemake,
			UsesExternalBeat:     song.UsesExternalBeat,
			HasExplicitContent:   song.HasExplicitContent,
			Lyrics:               song.Lyrics,
			AudioURL:             audio[i].url,
		})
	}

	return submission
}
