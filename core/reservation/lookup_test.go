package reservation

import (
	"context"
	"testing"

	"OtoDist/core/auth"
	"OtoDist/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *fakeRepo, code, email, password string) *model.Submission {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	sub := &model.Submission{
		ReservationCode: code,
		Email:           email,
		PasswordHash:    hash,
		Status:          model.StatusPending,
	}
	_, err = repo.Create(context.Background(), sub)
	require.NoError(t, err)
	return sub
}

func TestLookupAdminReturnsEverything(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	seed(t, repo, "OTD-2", "b@example.com", "pw-b")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, isAdmin, err := svc.Lookup(context.Background(), "sesame", "")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	require.Len(t, matches, 2)
	// 按创建时间倒序
	assert.Equal(t, "OTD-2", matches[0].ReservationCode)
	assert.Equal(t, "OTD-1", matches[1].ReservationCode)
}

func TestLookupByCodeNewestFirst(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "first@example.com", "pw-a")
	seed(t, repo, "OTD-1", "second@example.com", "pw-b")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, _, err := svc.Lookup(context.Background(), "OTD-1", "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "second@example.com", matches[0].Email)
	assert.Equal(t, "first@example.com", matches[1].Email)
}

func TestLookupByCode(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	seed(t, repo, "OTD-2", "b@example.com", "pw-b")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, isAdmin, err := svc.Lookup(context.Background(), "OTD-1", "")
	require.NoError(t, err)
	assert.False(t, isAdmin)
	require.Len(t, matches, 1)
	assert.Equal(t, "a@example.com", matches[0].Email)
}

func TestLookupByCodeNarrowedByEmail(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	seed(t, repo, "OTD-1", "b@example.com", "pw-b")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, _, err := svc.Lookup(context.Background(), "OTD-1", "b@example.com")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b@example.com", matches[0].Email)
}

func TestLookupNotFound(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeRepo(), nil, "sesame")

	_, _, err := svc.Lookup(context.Background(), "OTD-404", "")
	requireCode(t, err, "NOT_FOUND")
}

func TestLookupEmptyAdminSecretNeverMatches(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	svc := NewService(newFakeStore(), repo, nil, "")

	_, isAdmin, err := svc.Lookup(context.Background(), "", "")
	assert.False(t, isAdmin)
	requireCode(t, err, "NOT_FOUND")
}

func TestCheckCredentials(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-first")
	seed(t, repo, "OTD-2", "a@example.com", "pw-second")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, err := svc.CheckCredentials(context.Background(), "a@example.com", "pw-second")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "OTD-2", matches[0].ReservationCode)

	_, err = svc.CheckCredentials(context.Background(), "a@example.com", "wrong")
	requireCode(t, err, "NOT_FOUND")
}

// 记录存小写邮箱，查询输入大小写混写也必须命中
func TestCheckCredentialsNormalizesEmail(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "artist@example.com", "s3cret")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, err := svc.CheckCredentials(context.Background(), " Artist@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestLookupNormalizesEmail(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	seed(t, repo, "OTD-1", "b@example.com", "pw-b")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	matches, _, err := svc.Lookup(context.Background(), "OTD-1", "B@Example.com")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b@example.com", matches[0].Email)
}

func TestListAllRequiresAdminSecret(t *testing.T) {
	repo := newFakeRepo()
	seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	_, err := svc.ListAll(context.Background(), "wrong")
	requireCode(t, err, "FORBIDDEN")

	all, err := svc.ListAll(context.Background(), "sesame")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSoftDelete(t *testing.T) {
	repo := newFakeRepo()
	sub := seed(t, repo, "OTD-1", "a@example.com", "pw-a")
	svc := NewService(newFakeStore(), repo, nil, "sesame")

	err := svc.SoftDelete(context.Background(), "wrong", sub.ID)
	requireCode(t, err, "FORBIDDEN")
	assert.Equal(t, model.StatusPending, repo.items[sub.ID].Status)

	require.NoError(t, svc.SoftDelete(context.Background(), "sesame", sub.ID))
	assert.Equal(t, model.StatusCancelled, repo.items[sub.ID].Status)

	err = svc.SoftDelete(context.Background(), "sesame", 999)
	requireCode(t, err, "NOT_FOUND")
}

func TestHardDeleteRemovesRowAndObjects(t *testing.T) {
	store := newFakeStore()
	repo := newFakeRepo()
	svc := NewService(store, repo, nil, "sesame")

	res, err := svc.Submit(context.Background(), makeInput(t, 2))
	require.NoError(t, err)
	require.Equal(t, 3, store.objectCount())

	require.NoError(t, svc.HardDelete(context.Background(), "sesame", res.AlbumID))

	assert.Empty(t, repo.items)
	assert.Equal(t, 0, store.objectCount())
	assert.Len(t, store.deleted, 3)

	// 再次删除同一ID应报未找到
	err = svc.HardDelete(context.Background(), "sesame", res.AlbumID)
	requireCode(t, err, "NOT_FOUND")
}
