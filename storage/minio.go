package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"OtoDist/config"
	"OtoDist/core/apperr"
	"OtoDist/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Folders objects are grouped under inside the bucket.
const (
	FolderCovers = "covers"
	FolderAudio  = "audio"
)

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// ObjectStore is what the submission pipeline needs from object storage.
// Delete is idempotent: removing an absent key succeeds.
type ObjectStore interface {
	Put(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (key, publicURL string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) string
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// MinioStore 封装了 MinIO 客户端
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
	endpoint   string
	useSSL     bool
}

// NewMinioStore 创建 MinIO 客户端并确保存储桶存在
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("已创建存储桶", logger.String("bucket", cfg.MinioBucket))
	}

	return &MinioStore{
		client:     client,
		bucket:     cfg.MinioBucket,
		publicBase: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		endpoint:   cfg.MinioEndpoint,
		useSSL:     cfg.MinioUseSSL,
	}, nil
}

// objectKey derives a collision-resistant key that keeps the original
// extension so content type can be inferred on retrieval.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%d-%s%s", folder, time.Now().UnixMilli(), suffix, ext)
}

// Put 上传一个对象并返回其键与公开访问URL
func (s *MinioStore) Put(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	key := objectKey(folder, filename)

	opts := minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", "", apperr.StorageWrite(err)
	}

	return key, s.PublicURL(key), nil
}

// Get 打开一个对象用于流式读取；对象不存在返回 NotFound
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, apperr.StorageWrite(err)
	}

	// GetObject 是惰性的，Stat 才真正触发请求
	stat, err := object.Stat()
	if err != nil {
		object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, apperr.NotFound("")
		}
		return nil, nil, apperr.StorageWrite(err)
	}

	return object, &ObjectInfo{
		Key:          key,
		Size:         stat.Size,
		LastModified: stat.LastModified,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
	}, nil
}

// Delete 删除对象；对象不存在视为成功
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil
		}
		return apperr.StorageDelete(err)
	}
	return nil
}

// PublicURL 返回对象的确定性公开URL
func (s *MinioStore) PublicURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

// KeyFromURL 从存储的公开URL恢复对象键；无法识别时返回空串
func (s *MinioStore) KeyFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if s.publicBase != "" && strings.HasPrefix(rawURL, s.publicBase+"/") {
		return strings.TrimPrefix(rawURL, s.publicBase+"/")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/")
	if strings.HasPrefix(path, s.bucket+"/") {
		return strings.TrimPrefix(path, s.bucket+"/")
	}
	return path
}

// List 列出指定前缀下的所有对象
func (s *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}

	return objects, nil
}
