package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// fastPolicy keeps test backoff in the microsecond range.
func fastPolicy(maxAttempts int) *Policy {
	return New(maxAttempts, time.Microsecond, nil)
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	res, err := fastPolicy(3).Do(context.Background(), func(context.Context) (*post.PublishResult, error) {
		calls++
		return &post.PublishResult{Success: true, PostURL: "https://blog.example/p/1"}, nil
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, calls)
	assert.Zero(t, res.Retried, "first-attempt success must not be annotated")
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	res, err := fastPolicy(3).Do(context.Background(), func(context.Context) (*post.PublishResult, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("navigation timeout of 30000ms exceeded")
		}
		return &post.PublishResult{Success: true}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, res.Retried)
}

func TestDoDoesNotRetryNonTransient(t *testing.T) {
	calls := 0
	fatal := errors.New(errors.ErrLoginRequired, "session expired")
	_, err := fastPolicy(3).Do(context.Background(), func(context.Context) (*post.PublishResult, error) {
		calls++
		return nil, fatal
	})

	assert.Equal(t, 1, calls, "non-transient error on first attempt must never retry")
	assert.ErrorIs(t, err, fatal)
}

func TestDoRetriesFailedResultByErrorString(t *testing.T) {
	calls := 0
	res, _ := fastPolicy(2).Do(context.Background(), func(context.Context) (*post.PublishResult, error) {
		calls++
		return &post.PublishResult{Success: false, Error: "read: connection reset by peer"}, nil
	})

	assert.Equal(t, 2, calls)
	assert.False(t, res.Success)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := fastPolicy(3).Do(context.Background(), func(context.Context) (*post.PublishResult, error) {
		calls++
		return nil, stderrors.New("connection refused")
	})

	assert.Equal(t, 3, calls)
	assert.Error(t, err)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	policy := New(3, time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := policy.Do(ctx, func(context.Context) (*post.PublishResult, error) {
			calls++
			return nil, stderrors.New("timeout")
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDelaySchedule(t *testing.T) {
	policy := Default()

	assert.Equal(t, 2*time.Second, policy.Delay(1))
	assert.Equal(t, 4*time.Second, policy.Delay(2))
	assert.Equal(t, 8*time.Second, policy.Delay(3))
	assert.Equal(t, 30*time.Second, policy.Delay(10), "delay is capped at MaxDelay")
}
