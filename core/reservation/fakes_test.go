package reservation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"OtoDist/core/apperr"
	"OtoDist/model"
	"OtoDist/storage"
)

const fakeBaseURL = "http://cdn.test/otodist"

type fakeObject struct {
	data        []byte
	contentType string
}

// fakeStore 记录上传与删除操作的内存对象存储
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	puts    int
	deleted []string
	failPut string // 上传该文件名时返回错误
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]fakeObject)}
}

func (f *fakeStore) Put(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", apperr.StorageWrite(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.puts++
	if filename == f.failPut {
		return "", "", apperr.StorageWrite(errors.New("connection reset"))
	}
	key := fmt.Sprintf("%s/%d-%s", folder, f.puts, filename)
	f.objects[key] = fakeObject{data: data, contentType: contentType}
	return key, fakeBaseURL + "/" + key, nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	object, ok := f.objects[key]
	if !ok {
		return nil, nil, apperr.NotFound("")
	}
	info := &storage.ObjectInfo{
		Key:         key,
		Size:        int64(len(object.data)),
		ContentType: object.contentType,
	}
	return io.NopCloser(bytes.NewReader(object.data)), info, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) KeyFromURL(rawURL string) string {
	if strings.HasPrefix(rawURL, fakeBaseURL+"/") {
		return strings.TrimPrefix(rawURL, fakeBaseURL+"/")
	}
	return ""
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStore) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeRepo 内存投稿仓库
type fakeRepo struct {
	mu        sync.Mutex
	nextID    int64
	items     map[int64]*model.Submission
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[int64]*model.Submission)}
}

func (f *fakeRepo) Create(ctx context.Context, submission *model.Submission) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	submission.ID = f.nextID
	submission.CreatedAt = time.Now()
	f.items[submission.ID] = submission
	return submission.ID, nil
}

// 与真实仓库一致：按创建时间倒序
func sortNewestFirst(subs []*model.Submission) []*model.Submission {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].ID > subs[j].ID
		}
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id], nil
}

func (f *fakeRepo) FindByCode(ctx context.Context, code, email string) ([]*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Submission
	for _, sub := range f.items {
		if sub.ReservationCode != code {
			continue
		}
		if email != "" && sub.Email != email {
			continue
		}
		out = append(out, sub)
	}
	return sortNewestFirst(out), nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) ([]*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Submission
	for _, sub := range f.items {
		if sub.Email == email {
			out = append(out, sub)
		}
	}
	return sortNewestFirst(out), nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*model.Submission, 0, len(f.items))
	for _, sub := range f.items {
		out = append(out, sub)
	}
	return sortNewestFirst(out), nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id int64, status model.SubmissionStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.items[id]
	if !ok {
		return false, nil
	}
	sub.Status = status
	return true, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}
