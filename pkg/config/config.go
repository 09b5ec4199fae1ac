// Package config provides configuration management for the publish engine
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// Config is the root configuration for the publish engine.
type Config struct {
	// DataDir is the directory holding the ledger file, session records,
	// and persisted browser profiles.
	DataDir string `json:"data_dir"`

	// HTTPAddr is the listen address of the HTTP transport.
	HTTPAddr string `json:"http_addr"`

	// Retry controls the retry policy wrapped around adapter publishes.
	Retry RetryConfig `json:"retry"`

	// DuplicateWindow is the span within which a repeat (platform, title)
	// publish is blocked by default.
	DuplicateWindow time.Duration `json:"duplicate_window"`

	// HistoryLimit caps the ledger size. Oldest entries are truncated.
	HistoryLimit int `json:"history_limit"`

	// RefreshInterval is how often the session refresher revisits platforms.
	RefreshInterval time.Duration `json:"refresh_interval"`

	// CaptureTimeout bounds the interactive login wait.
	CaptureTimeout time.Duration `json:"capture_timeout"`

	// NavigationTimeout bounds a single browser navigation or action.
	NavigationTimeout time.Duration `json:"navigation_timeout"`

	// Headless controls whether automation contexts run without a window.
	// Interactive session capture always runs headful.
	Headless bool `json:"headless"`

	// NotifyWebhooks lists webhook sinks for outcome notifications.
	NotifyWebhooks []string `json:"notify_webhooks,omitempty"`

	// NotifyTimeout bounds a single notification sink delivery.
	NotifyTimeout time.Duration `json:"notify_timeout"`

	// Redis, when set, backs the scheduled publish queue with Redis
	// instead of the in-memory queue.
	Redis *RedisConfig `json:"redis,omitempty"`

	// Telemetry configures the OpenTelemetry provider.
	Telemetry *TelemetryConfig `json:"telemetry,omitempty"`

	// Logger receives engine logs.
	Logger logger.Logger `json:"-"`
}

// RetryConfig defines retry behavior for adapter publishes.
type RetryConfig struct {
	MaxAttempts int           `json:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay"`
	Multiplier  float64       `json:"multiplier"`
	MaxDelay    time.Duration `json:"max_delay"`
}

// RedisConfig contains Redis connection and queue key configuration.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	// KeyPrefix namespaces the queue's ready list and delayed set.
	KeyPrefix string `json:"key_prefix"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
}

// Option mutates a Config and may reject invalid values.
type Option func(*Config) error

// New builds a Config from defaults and the given options.
func New(opts ...Option) (*Config, error) {
	cfg := Default()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:           "data",
		HTTPAddr:          ":8080",
		Retry:             DefaultRetry(),
		DuplicateWindow:   24 * time.Hour,
		HistoryLimit:      500,
		RefreshInterval:   30 * time.Minute,
		CaptureTimeout:    5 * time.Minute,
		NavigationTimeout: 45 * time.Second,
		NotifyTimeout:     10 * time.Second,
		Headless:          true,
		Logger:            logger.New(),
	}
}

// DefaultRetry returns the default retry policy configuration.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    30 * time.Second,
	}
}

// DefaultRedis returns default Redis queue configuration.
func DefaultRedis() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "blogpub:jobs",
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1")
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be positive")
	}
	if c.DuplicateWindow <= 0 {
		return fmt.Errorf("duplicate window must be positive")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	return nil
}

// LedgerPath returns the path of the history ledger file.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "publish-history.json")
}

// SessionDir returns the directory holding per-platform session records.
func (c *Config) SessionDir() string {
	return filepath.Join(c.DataDir, "sessions")
}

// ProfileDir returns the persisted browser profile directory for a platform.
func (c *Config) ProfileDir(platform string) string {
	return filepath.Join(c.DataDir, "profiles", platform)
}
