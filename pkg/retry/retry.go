// Package retry wraps adapter operations with bounded exponential-backoff
// retry, classifying failures as transient or final.
package retry

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Operation is one attempt of the wrapped work.
type Operation func(ctx context.Context) (*post.PublishResult, error)

// Policy defines retry behavior.
type Policy struct {
	MaxAttempts int           `json:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay"`
	Multiplier  float64       `json:"multiplier"`
	MaxDelay    time.Duration `json:"max_delay"`

	logger logger.Logger
}

// New creates a policy. Zero or negative fields fall back to defaults.
func New(maxAttempts int, baseDelay time.Duration, log logger.Logger) *Policy {
	p := Default()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if baseDelay > 0 {
		p.BaseDelay = baseDelay
	}
	if log != nil {
		p.logger = log
	}
	return p
}

// Default returns the standard policy: 3 attempts, 2s/4s/8s backoff.
func Default() *Policy {
	return &Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    30 * time.Second,
		logger:      logger.Discard,
	}
}

// Delay returns the backoff before retry attempt n (1-based: the delay
// slept after attempt n failed).
func (p *Policy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do runs op up to MaxAttempts times. A failed attempt is retried only when
// its error is transient; non-transient failures return immediately. A
// success on attempt k>1 is annotated with Retried=k. Context cancellation
// interrupts the backoff sleep and is returned as-is.
func (p *Policy) Do(ctx context.Context, op Operation) (*post.PublishResult, error) {
	var lastRes *post.PublishResult
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		res, err := op(ctx)
		if err == nil && res != nil && res.Success {
			if attempt > 1 {
				res.Retried = attempt
			}
			return res, nil
		}

		lastRes, lastErr = res, err
		failure := err
		if failure == nil && res != nil && res.Error != "" {
			failure = stderrors.New(res.Error)
		}

		if !errors.IsTransient(failure) || attempt == p.MaxAttempts {
			return lastRes, lastErr
		}

		delay := p.Delay(attempt)
		p.logger.Warn("transient publish failure, retrying",
			"attempt", attempt, "max_attempts", p.MaxAttempts, "delay", delay, "error", failure)

		select {
		case <-ctx.Done():
			return lastRes, ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastRes, lastErr
}
