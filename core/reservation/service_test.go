package reservation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"OtoDist/core/apperr"
	"OtoDist/core/auth"
	"OtoDist/core/form"
	"OtoDist/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngContent = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	wavContent = append([]byte("RIFF\x24\x08\x00\x00WAVEfmt "), make([]byte, 32)...)
)

func makeFileInput(t *testing.T, filename, contentType string, content []byte) *form.FileInput {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	mf, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { mf.RemoveAll() })

	return &form.FileInput{Header: mf.File["file"][0], ContentType: contentType}
}

func makeInput(t *testing.T, songs int) *form.SubmissionInput {
	t.Helper()

	in := &form.SubmissionInput{
		Email:           "artist@example.com",
		Password:        "s3cret",
		ReservationCode: "OTD-1234",

		AlbumNameDomestic:      "はじまりの音",
		AlbumNameInternational: "First Light",
		ArtistNameKana:         "ハジマリ",
		ArtistNameEnglish:      "Hajimari",
		VersionInfo:            "1.0",
		ReleaseDate:            time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),

		Platforms: []string{"spotify"},

		RightsAgreement:    true,
		ReReleaseAgreement: true,
		PlatformAgreement:  true,
		AllAgreement:       true,

		ServiceType: string(model.ServiceAudioOnly),

		Cover: makeFileInput(t, "cover.png", "image/png", pngContent),
	}
	for i := 0; i < songs; i++ {
		in.Songs = append(in.Songs, form.SongInput{
			TrackNo: i + 1,
			Title:   fmt.Sprintf("Track %d", i+1),
			Audio:   makeFileInput(t, fmt.Sprintf("track%d.wav", i+1), "audio/wav", wavContent),
		})
	}
	return in
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestSubmitSuccess(t *testing.T) {
	store := newFakeStore()
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	res, err := svc.Submit(context.Background(), makeInput(t, 2))
	require.NoError(t, err)

	assert.Equal(t, "OTD-1234", res.ReservationCode)
	assert.NotEmpty(t, res.ImageURL)
	require.Len(t, res.AudioURLs, 2)

	// 封面 + 两首歌都在，没有任何补偿删除
	assert.Equal(t, 3, store.objectCount())
	assert.Empty(t, store.deleted)

	sub := repo.items[res.AlbumID]
	require.NotNil(t, sub)
	assert.Equal(t, model.StatusPending, sub.Status)
	assert.Equal(t, model.DefaultPaymentAmount, sub.PaymentAmount)
	assert.Equal(t, res.ImageURL, sub.CoverURL)
	require.Len(t, sub.Songs, 2)
	assert.Equal(t, res.AudioURLs[0], sub.Songs[0].AudioURL)
	assert.Equal(t, res.AudioURLs[1], sub.Songs[1].AudioURL)

	assert.NotEqual(t, "s3cret", sub.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("s3cret", sub.PasswordHash))
}

func TestSubmitPersistFailureUnwindsAllObjects(t *testing.T) {
	store := newFakeStore()
	repo := newFakeRepo()
	repo.createErr = errors.New("Error 1062: Duplicate entry 'OTD-1234'")
	svc := NewService(store, repo, nil, "sesame")

	_, err := svc.Submit(context.Background(), makeInput(t, 2))
	requireCode(t, err, "DUPLICATE")

	assert.Equal(t, 0, store.objectCount())
	assert.Len(t, store.deleted, 3)
	// 逆序补偿：封面最先上传，最后删除
	assert.True(t, strings.HasPrefix(store.deleted[len(store.deleted)-1], "covers/"))
}

func TestSubmitCoverFailureStopsEarly(t *testing.T) {
	store := newFakeStore()
	store.failPut = "cover.png"
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	_, err := svc.Submit(context.Background(), makeInput(t, 2))
	requireCode(t, err, "STORAGE_WRITE")

	assert.Equal(t, 1, store.puts)
	assert.Empty(t, store.deleted)
	assert.Empty(t, repo.items)
}

func TestSubmitAudioFailureUnwindsUploaded(t *testing.T) {
	store := newFakeStore()
	store.failPut = "track2.wav"
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	_, err := svc.Submit(context.Background(), makeInput(t, 3))
	requireCode(t, err, "STORAGE_WRITE")

	// 封面和两首上传成功的歌都被删除
	assert.Equal(t, 0, store.objectCount())
	assert.Len(t, store.deleted, 3)
	assert.Empty(t, repo.items)
}
