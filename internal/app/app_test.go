package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/service"
	"smart_quiz_portal/internal/util"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestReportDownloadAfterStorageFallback(t *testing.T) {
	storage := service.NewStorageService(&config.StorageConfig{
		Type:          util.StorageMinio,
		MinioEndpoint: "bad!host:9000",
		LocalPath:     t.TempDir(),
	})
	router := gin.New()
	mountReportDownloads(router, storage)

	body := "quiz,attempts\nCells,3\n"
	link, err := storage.Upload(context.Background(), "reports/class-1.csv", strings.NewReader(body), int64(len(body)), util.MimeCSV)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, link, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", link, w.Code)
	}
	if w.Body.String() != body {
		t.Errorf("downloaded %q", w.Body.String())
	}
}

func TestUploadsNotMountedForRemoteStorage(t *testing.T) {
	storage := service.NewStorageService(&config.StorageConfig{
		Type:          util.StorageMinio,
		MinioEndpoint: "localhost:9000",
		MinioBucket:   "reports",
		MinioRegion:   "us-east-1",
		LocalPath:     t.TempDir(),
	})
	router := gin.New()
	mountReportDownloads(router, storage)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/reports/class-1.csv", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
