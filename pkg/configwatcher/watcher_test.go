package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"smart_quiz_portal/internal/config"
)

const configTemplate = `
database:
  driver: mysql
jwt:
  secret: watcher-test
session:
  store: memory
storage:
  type: minio
scoring:
  pass_threshold: %s
`

func writeThreshold(t *testing.T, path, threshold string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, threshold)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeThreshold(t, path, "60")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	go func() {
		_ = WatchConfig(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 注册完成
	time.Sleep(200 * time.Millisecond)
	writeThreshold(t, path, "75")

	select {
	case cfg := <-reloaded:
		if cfg.Scoring.PassThreshold != 75 {
			t.Fatalf("threshold = %v, want 75", cfg.Scoring.PassThreshold)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
