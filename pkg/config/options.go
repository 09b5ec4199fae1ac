// Package config provides functional options for the publish engine
package config

import (
	"fmt"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(cfg *Config) error {
		if dir == "" {
			return fmt.Errorf("data dir must not be empty")
		}
		cfg.DataDir = dir
		return nil
	}
}

// WithHTTPAddr sets the HTTP listen address.
func WithHTTPAddr(addr string) Option {
	return func(cfg *Config) error {
		cfg.HTTPAddr = addr
		return nil
	}
}

// WithRetry sets the retry policy configuration.
func WithRetry(retry RetryConfig) Option {
	return func(cfg *Config) error {
		if retry.MaxAttempts < 1 {
			return fmt.Errorf("retry max attempts must be at least 1")
		}
		cfg.Retry = retry
		return nil
	}
}

// WithDuplicateWindow sets the duplicate suppression window.
func WithDuplicateWindow(window time.Duration) Option {
	return func(cfg *Config) error {
		if window <= 0 {
			return fmt.Errorf("duplicate window must be positive")
		}
		cfg.DuplicateWindow = window
		return nil
	}
}

// WithHistoryLimit sets the ledger size cap.
func WithHistoryLimit(limit int) Option {
	return func(cfg *Config) error {
		if limit < 1 {
			return fmt.Errorf("history limit must be positive")
		}
		cfg.HistoryLimit = limit
		return nil
	}
}

// WithRefreshInterval sets the session refresher interval.
func WithRefreshInterval(interval time.Duration) Option {
	return func(cfg *Config) error {
		if interval <= 0 {
			return fmt.Errorf("refresh interval must be positive")
		}
		cfg.RefreshInterval = interval
		return nil
	}
}

// WithCaptureTimeout bounds the interactive login wait.
func WithCaptureTimeout(timeout time.Duration) Option {
	return func(cfg *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("capture timeout must be positive")
		}
		cfg.CaptureTimeout = timeout
		return nil
	}
}

// WithNavigationTimeout bounds a single browser navigation.
func WithNavigationTimeout(timeout time.Duration) Option {
	return func(cfg *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("navigation timeout must be positive")
		}
		cfg.NavigationTimeout = timeout
		return nil
	}
}

// WithHeadless toggles headless automation contexts.
func WithHeadless(headless bool) Option {
	return func(cfg *Config) error {
		cfg.Headless = headless
		return nil
	}
}

// WithNotifyWebhook appends a webhook notification sink.
func WithNotifyWebhook(url string) Option {
	return func(cfg *Config) error {
		if url == "" {
			return fmt.Errorf("webhook url must not be empty")
		}
		cfg.NotifyWebhooks = append(cfg.NotifyWebhooks, url)
		return nil
	}
}

// WithRedisQueue backs the scheduled publish queue with Redis.
func WithRedisQueue(redisCfg *RedisConfig) Option {
	return func(cfg *Config) error {
		if redisCfg == nil || redisCfg.Addr == "" {
			return fmt.Errorf("redis config requires an address")
		}
		cfg.Redis = redisCfg
		return nil
	}
}

// WithTelemetry configures the telemetry provider.
func WithTelemetry(telemetryCfg *TelemetryConfig) Option {
	return func(cfg *Config) error {
		cfg.Telemetry = telemetryCfg
		return nil
	}
}

// WithLogger sets a custom logger instance.
func WithLogger(l logger.Logger) Option {
	return func(cfg *Config) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		cfg.Logger = l
		return nil
	}
}
