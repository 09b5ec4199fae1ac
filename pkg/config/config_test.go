package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 500, cfg.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.DuplicateWindow)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	assert.True(t, cfg.Headless)
	assert.NotNil(t, cfg.Logger)
	assert.NoError(t, cfg.Validate())
}

func TestNewAppliesOptions(t *testing.T) {
	cfg, err := New(
		WithDataDir("/tmp/blogpub"),
		WithHTTPAddr(":9090"),
		WithDuplicateWindow(6*time.Hour),
		WithHistoryLimit(100),
		WithNotifyWebhook("https://hooks.example.com/publish"),
	)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/blogpub", cfg.DataDir)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 6*time.Hour, cfg.DuplicateWindow)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, []string{"https://hooks.example.com/publish"}, cfg.NotifyWebhooks)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty data dir", WithDataDir("")},
		{"zero duplicate window", WithDuplicateWindow(0)},
		{"zero history limit", WithHistoryLimit(0)},
		{"nil logger", WithLogger(nil)},
		{"zero retry attempts", WithRetry(RetryConfig{MaxAttempts: 0})},
		{"empty webhook", WithNotifyWebhook("")},
		{"redis without addr", WithRedisQueue(&RedisConfig{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/var/lib/blogpub"

	assert.Equal(t, filepath.Join("/var/lib/blogpub", "publish-history.json"), cfg.LedgerPath())
	assert.Equal(t, filepath.Join("/var/lib/blogpub", "sessions"), cfg.SessionDir())
	assert.Equal(t, filepath.Join("/var/lib/blogpub", "profiles", "tistory"), cfg.ProfileDir("tistory"))
}
