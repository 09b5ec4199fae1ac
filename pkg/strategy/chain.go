package strategy

import (
	"context"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/retry"
)

// Chain runs strategies strictly in priority order. Each attempt is wrapped
// by the retry policy; the first success short-circuits the rest. When the
// automated tiers are exhausted the clipboard fallback produces a usable
// payload, so callers are never left with only an error.
type Chain struct {
	platform   string
	strategies []Strategy
	fallback   *Clipboard
	retry      *retry.Policy
	logger     logger.Logger
}

// NewChain creates a chain. fallback may be nil for platforms that have an
// out-of-band manual flow, though in practice every adapter supplies one.
func NewChain(platform string, strategies []Strategy, fallback *Clipboard, policy *retry.Policy, log logger.Logger) *Chain {
	if policy == nil {
		policy = retry.Default()
	}
	if log == nil {
		log = logger.Discard
	}
	return &Chain{
		platform:   platform,
		strategies: strategies,
		fallback:   fallback,
		retry:      policy,
		logger:     log,
	}
}

// Run executes the chain for one publish call.
func (c *Chain) Run(ctx context.Context, p *post.Post, creds *post.Credentials) *post.PublishResult {
	var fatalErr error

	for _, strat := range c.strategies {
		res, err := c.retry.Do(ctx, func(attemptCtx context.Context) (*post.PublishResult, error) {
			return strat.Publish(attemptCtx, p, creds)
		})

		if err == nil && res != nil && res.Success {
			if res.Method == "" {
				res.Method = strat.Name()
			}
			c.logger.Info("strategy succeeded", "platform", c.platform, "strategy", strat.Name(), "retried", res.Retried)
			return res
		}

		if ctx.Err() != nil {
			return post.Failed(errors.Wrap(ctx.Err(), errors.ErrTimeout, "publish cancelled").WithPlatform(c.platform))
		}

		failure := err
		if failure == nil && res != nil {
			failure = errors.New(errors.ErrStrategyExhausted, res.Error).WithPlatform(c.platform)
		}

		if errors.IsFatal(failure) {
			c.logger.Warn("strategy aborted chain: login required",
				"platform", c.platform, "strategy", strat.Name())
			fatalErr = failure
			break
		}

		c.logger.Warn("strategy failed, moving to next tier",
			"platform", c.platform, "strategy", strat.Name(), "error", failure)
	}

	return c.finish(p, fatalErr)
}

// finish runs the fallback tier after the automated tiers are done.
func (c *Chain) finish(p *post.Post, fatalErr error) *post.PublishResult {
	if c.fallback == nil {
		err := fatalErr
		if err == nil {
			err = errors.New(errors.ErrStrategyExhausted, "every delivery strategy failed").WithPlatform(c.platform)
		}
		return post.Failed(err)
	}

	payload := c.fallback.Payload(p)

	if fatalErr != nil {
		// The session is invalid: surface the login-required signal
		// instead of a hollow success, but still hand over the payload.
		res := post.Failed(fatalErr)
		res.Method = post.MethodClipboard
		res.Payload = payload
		res.Warning = "session expired: log in again, then retry; the post body is ready to paste in the meantime"
		return res
	}

	c.logger.Info("automated strategies exhausted, returning manual-copy payload", "platform", c.platform)
	return &post.PublishResult{
		Success: true,
		Method:  post.MethodClipboard,
		Payload: payload,
		Warning: "automated publish failed on every tier: paste the prepared payload into the editor manually",
	}
}
