package service

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/util"
)

func TestLocalStorageUpload(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})

	body := "quiz,attempts\nCells,3\n"
	link, err := svc.Upload(context.Background(), "/reports/class-1.csv", strings.NewReader(body), int64(len(body)), util.MimeCSV)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if link != "/uploads/reports/class-1.csv" {
		t.Errorf("link = %q", link)
	}

	got, err := os.ReadFile(filepath.Join(dir, "reports", "class-1.csv"))
	if err != nil {
		t.Fatalf("read uploaded file: %v", err)
	}
	if string(got) != body {
		t.Errorf("content = %q", got)
	}
}

func TestUploadRejectsEscapingKey(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()})

	for _, key := range []string{"../secret.csv", "reports/../../x.csv", "/"} {
		_, err := svc.Upload(context.Background(), key, strings.NewReader("x"), 1, util.MimeCSV)
		if !errors.Is(err, util.ErrValidation) {
			t.Errorf("Upload(%q) err = %v, want ErrValidation", key, err)
		}
	}
}

func TestStorageSelection(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{
		Type:              util.StorageMinio,
		MinioEndpoint:     "localhost:9000",
		MinioAccessID:     "key",
		MinioSecret:       "secret",
		MinioBucket:       "reports",
		MinioRegion:       "us-east-1",
		LinkExpiryMinutes: 15,
	})
	store, ok := svc.Store.(*MinioReportStore)
	if !ok {
		t.Fatalf("store = %T, want minio", svc.Store)
	}
	if store.Expiry != 15*time.Minute {
		t.Errorf("expiry = %v", store.Expiry)
	}

	// 预签名在本地完成，不访问 MinIO
	link, err := store.Link(context.Background(), "reports/a.csv")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if u.Path != "/reports/reports/a.csv" || u.Query().Get("X-Amz-Expires") != "900" {
		t.Errorf("link = %s", link)
	}

	if _, ok := svc.LocalRoot(); ok {
		t.Error("minio store reported as local")
	}

	// 无效的 endpoint 退回本地存储
	dir := t.TempDir()
	fallback := NewStorageService(&config.StorageConfig{Type: util.StorageMinio, MinioEndpoint: "bad!host:9000", LocalPath: dir})
	if _, ok := fallback.Store.(*LocalReportStore); !ok {
		t.Errorf("store = %T, want local fallback", fallback.Store)
	}
	if root, ok := fallback.LocalRoot(); !ok || root != dir {
		t.Errorf("LocalRoot = %q, %v", root, ok)
	}
}

func TestLinkExpiryDefault(t *testing.T) {
	if got := linkExpiry(&config.StorageConfig{}); got != time.Hour {
		t.Errorf("linkExpiry = %v, want 1h", got)
	}
}
