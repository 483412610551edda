package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ReportStore 导出报表的存储后端。Put 写入对象，Link 返回可下载的地址
type ReportStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Link(ctx context.Context, key string) (string, error)
}

// cleanKey 拒绝绝对路径和 ".." 片段
func cleanKey(key string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("%w: invalid object key %q", util.ErrValidation, key)
	}
	return cleaned, nil
}

// LocalReportStore 写入 storage.local_path，由 /uploads 静态路由提供下载
type LocalReportStore struct {
	Root string
}

func (p *LocalReportStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	dst := filepath.Join(p.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func (p *LocalReportStore) Link(_ context.Context, key string) (string, error) {
	return "/uploads/" + key, nil
}

// MinioReportStore 私有桶 + 预签名下载链接
type MinioReportStore struct {
	Client *minio.Client
	Bucket string
	Region string
	Expiry time.Duration

	mu          sync.Mutex
	bucketReady bool
}

func NewMinioReportStore(cfg *config.StorageConfig) (*MinioReportStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, err
	}
	return &MinioReportStore{
		Client: client,
		Bucket: cfg.MinioBucket,
		Region: cfg.MinioRegion,
		Expiry: linkExpiry(cfg),
	}, nil
}

func (p *MinioReportStore) ensureBucket(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bucketReady {
		return nil
	}

	exists, err := p.Client.BucketExists(ctx, p.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := p.Client.MakeBucket(ctx, p.Bucket, minio.MakeBucketOptions{Region: p.Region}); err != nil {
			return err
		}
		logger.Log.Info("Created report bucket", zap.String("bucket", p.Bucket))
	}
	p.bucketReady = true
	return nil
}

func (p *MinioReportStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := p.ensureBucket(ctx); err != nil {
		return fmt.Errorf("prepare bucket %s: %w", p.Bucket, err)
	}
	_, err := p.Client.PutObject(ctx, p.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioReportStore) Link(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	u, err := p.Client.PresignedGetObject(ctx, p.Bucket, key, p.Expiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// OSSReportStore 阿里云OSS，下载地址为签名 URL
type OSSReportStore struct {
	Bucket *oss.Bucket
	Expiry time.Duration
}

func NewOSSReportStore(cfg *config.StorageConfig) (*OSSReportStore, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSReportStore{Bucket: bucket, Expiry: linkExpiry(cfg)}, nil
}

func (p *OSSReportStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return p.Bucket.PutObject(key, reader,
		oss.ContentType(contentType),
		oss.ContentLength(size),
		oss.ContentDisposition(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
		oss.WithContext(ctx),
	)
}

func (p *OSSReportStore) Link(_ context.Context, key string) (string, error) {
	return p.Bucket.SignURL(key, oss.HTTPGet, int64(p.Expiry/time.Second))
}

func linkExpiry(cfg *config.StorageConfig) time.Duration {
	if cfg.LinkExpiryMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(cfg.LinkExpiryMinutes) * time.Minute
}

// StorageService 报表导出的上传入口，实现 Uploader
type StorageService struct {
	Store ReportStore
}

// NewStorageService 按 storage.type 选择后端，远端存储初始化失败时退回本地存储
func NewStorageService(cfg *config.StorageConfig) *StorageService {
	var store ReportStore
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioReportStore(cfg)
		if err != nil {
			logger.Log.Warn("MinIO storage unavailable, falling back to local", zap.Error(err))
		} else {
			store = p
		}
	case util.StorageOSS:
		p, err := NewOSSReportStore(cfg)
		if err != nil {
			logger.Log.Warn("OSS storage unavailable, falling back to local", zap.Error(err))
		} else {
			store = p
		}
	}

	if store == nil {
		store = &LocalReportStore{Root: cfg.LocalPath}
	}

	return &StorageService{Store: store}
}

// LocalRoot 实际使用本地存储时（包括远端初始化失败后的回退）返回其目录
func (s *StorageService) LocalRoot() (string, bool) {
	local, ok := s.Store.(*LocalReportStore)
	if !ok {
		return "", false
	}
	return local.Root, true
}

// Upload 写入对象并返回下载地址
func (s *StorageService) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.Store.Put(ctx, key, reader, size, contentType); err != nil {
		logger.Log.Error("Failed to store report", zap.String("key", key), zap.Error(err))
		return "", err
	}
	return s.Store.Link(ctx, key)
}
