package reservation

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadAudio(t *testing.T) {
	store := newFakeStore()
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	res, err := svc.Submit(context.Background(), makeInput(t, 2))
	require.NoError(t, err)

	dl, err := svc.DownloadAudio(context.Background(), res.AlbumID, 2)
	require.NoError(t, err)
	defer dl.Body.Close()

	assert.Equal(t, "02 - Track 2.wav", dl.Filename)
	assert.Equal(t, "audio/wav", dl.ContentType)
	assert.Equal(t, int64(len(wavContent)), dl.Size)

	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, wavContent, data)
}

func TestDownloadAudioDefaultsToFirstTrack(t *testing.T) {
	store := newFakeStore()
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	res, err := svc.Submit(context.Background(), makeInput(t, 2))
	require.NoError(t, err)

	dl, err := svc.DownloadAudio(context.Background(), res.AlbumID, 0)
	require.NoError(t, err)
	defer dl.Body.Close()
	assert.Equal(t, "01 - Track 1.wav", dl.Filename)
}

func TestDownloadAudioMissing(t *testing.T) {
	store := newFakeStore()
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	// 不存在的投稿
	_, err := svc.DownloadAudio(context.Background(), 999, 1)
	requireCode(t, err, "NOT_FOUND")

	// 存在的投稿但没有这首歌
	res, err := svc.Submit(context.Background(), makeInput(t, 1))
	require.NoError(t, err)
	_, err = svc.DownloadAudio(context.Background(), res.AlbumID, 7)
	requireCode(t, err, "NOT_FOUND")
}
