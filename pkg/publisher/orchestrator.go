// Package publisher coordinates one publish end to end: validation, the
// duplicate guard, content transformation, adapter delivery, the ledger
// append, and outcome notification.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/observability"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/history"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/notify"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/transform"
)

// Options assembles an Orchestrator.
type Options struct {
	Registry    *platform.Registry
	Ledger      history.Store
	Guard       *history.DuplicateGuard
	Credentials CredentialsProvider
	Notifier    *notify.Dispatcher
	Telemetry   *observability.TelemetryProvider
	Logger      logger.Logger
}

// Orchestrator runs the publish pipeline. Safe for concurrent use.
type Orchestrator struct {
	registry  *platform.Registry
	ledger    history.Store
	guard     *history.DuplicateGuard
	creds     CredentialsProvider
	notifier  *notify.Dispatcher
	telemetry *observability.TelemetryProvider
	logger    logger.Logger
	now       func() time.Time
}

// New creates an orchestrator. Registry and Ledger are required; every
// other collaborator degrades to a no-op when nil.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, errors.New(errors.ErrInvalidRequest, "orchestrator requires a platform registry")
	}
	if opts.Ledger == nil {
		return nil, errors.New(errors.ErrInvalidRequest, "orchestrator requires a history ledger")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard
	}
	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry, _ = observability.NewTelemetryProvider(nil)
	}
	creds := opts.Credentials
	if creds == nil {
		creds = NewChainProvider(nil)
	}

	return &Orchestrator{
		registry:  opts.Registry,
		ledger:    opts.Ledger,
		guard:     opts.Guard,
		creds:     creds,
		notifier:  opts.Notifier,
		telemetry: telemetry,
		logger:    log,
		now:       time.Now,
	}, nil
}

// Publish runs the pipeline for one request.
//
// Gate failures (invalid request, unknown platform) return a non-nil error
// and, except for the duplicate gate, still leave a failed ledger record.
// A blocked duplicate returns IsDuplicate=true with the ledger untouched.
// Delivery outcomes, successful or not, return a result and a nil error.
func (o *Orchestrator) Publish(ctx context.Context, req *post.PublishRequest) (*post.PublishResult, error) {
	start := o.now()

	var title, platformName string
	if req != nil {
		platformName = req.Platform
		if req.Post != nil {
			// The ledger and the duplicate guard both work on the
			// truncated form.
			title = req.Post.TruncatedTitle()
		}
	}

	ctx, span := o.telemetry.TracePublish(ctx, platformName, title)
	defer span.End()

	var err error
	if req == nil {
		err = errors.New(errors.ErrInvalidRequest, "publish request is required")
	} else {
		err = req.Validate()
	}
	if err != nil {
		o.record(history.Entry{
			Platform: platformName,
			Title:    title,
			Elapsed:  o.now().Sub(start),
			Status:   history.StatusFailed,
			Error:    err.Error(),
		})
		o.telemetry.SetSpanError(span, err)
		o.telemetry.RecordPublish(ctx, platformName, "", false, o.now().Sub(start))
		return nil, err
	}

	if o.guard != nil && !req.SkipDuplicateCheck {
		dup, err := o.guard.IsDuplicate(title, req.Platform)
		if err != nil {
			// A broken guard must not block publishing.
			o.logger.Warn("duplicate guard unavailable, continuing", "platform", req.Platform, "error", err)
		} else if dup {
			o.logger.Info("duplicate publish blocked", "platform", req.Platform, "title", req.Post.TruncatedTitle())
			o.telemetry.RecordDuplicateBlocked(ctx, req.Platform)
			dupErr := errors.New(errors.ErrDuplicatePublish,
				fmt.Sprintf("%q was already published to %s within the duplicate window", req.Post.TruncatedTitle(), req.Platform))
			return &post.PublishResult{
				Success:     false,
				IsDuplicate: true,
				Error:       dupErr.Error(),
				Elapsed:     o.now().Sub(start),
			}, nil
		}
	}

	adapter, err := o.registry.Resolve(req.Platform)
	if err != nil {
		o.record(history.Entry{
			Platform: req.Platform,
			Title:    title,
			Elapsed:  o.now().Sub(start),
			Status:   history.StatusFailed,
			Error:    err.Error(),
		})
		o.telemetry.SetSpanError(span, err)
		o.telemetry.RecordPublish(ctx, req.Platform, "", false, o.now().Sub(start))
		return nil, err
	}

	transformed := transform.Apply(req.Platform, req.Post)

	creds, err := o.creds.Resolve(req.Platform, req.Credentials)
	if err != nil {
		o.logger.Warn("credential resolution failed, publishing without credentials",
			"platform", req.Platform, "error", err)
		creds = &post.Credentials{}
	}

	res := o.deliver(ctx, adapter, transformed, creds)
	res.Elapsed = o.now().Sub(start)

	entry := history.Entry{
		Platform: req.Platform,
		Title:    title,
		PostURL:  res.PostURL,
		Method:   res.Method,
		Elapsed:  res.Elapsed,
		Status:   history.StatusSuccess,
		Error:    res.Error,
	}
	if !res.Success {
		entry.Status = history.StatusFailed
	}
	o.record(entry)

	if res.Success {
		o.telemetry.SetSpanSuccess(span)
	} else {
		o.telemetry.SetSpanError(span, errors.New(errors.ErrStrategyExhausted, res.Error))
	}
	o.telemetry.RecordPublish(ctx, req.Platform, res.Method, res.Success, res.Elapsed)

	o.announce(req, res)
	return res, nil
}

// deliver invokes the adapter, converting a panic into a failed result so
// the ledger append and notification still happen.
func (o *Orchestrator) deliver(ctx context.Context, adapter platform.Platform, p *post.Post, creds *post.Credentials) (res *post.PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("adapter panicked", "platform", adapter.Name(), "panic", r)
			res = post.Failed(errors.New(errors.ErrInternal, fmt.Sprintf("adapter panicked: %v", r)).WithPlatform(adapter.Name()))
		}
	}()

	res, err := adapter.Publish(ctx, p, creds)
	if err != nil {
		return post.Failed(err)
	}
	if res == nil {
		return post.Failed(errors.New(errors.ErrInternal, "adapter returned no result").WithPlatform(adapter.Name()))
	}
	return res
}

// TestConnection checks whether the platform is reachable with the given
// credentials, without publishing anything.
func (o *Orchestrator) TestConnection(ctx context.Context, platformName string, creds *post.Credentials) (*post.PublishResult, error) {
	adapter, err := o.registry.Resolve(platformName)
	if err != nil {
		return nil, err
	}
	resolved, err := o.creds.Resolve(platformName, creds)
	if err != nil {
		resolved = creds
	}
	return adapter.TestConnection(ctx, resolved)
}

func (o *Orchestrator) record(entry history.Entry) {
	if _, err := o.ledger.Append(entry); err != nil {
		o.logger.Error("ledger append failed", "platform", entry.Platform, "error", err)
	}
}

func (o *Orchestrator) announce(req *post.PublishRequest, res *post.PublishResult) {
	if o.notifier == nil {
		return
	}
	o.notifier.Dispatch(&notify.Event{
		Platform:  req.Platform,
		Title:     req.Post.Title,
		Success:   res.Success,
		Method:    res.Method,
		PostURL:   res.PostURL,
		Error:     res.Error,
		Warning:   res.Warning,
		NeedLogin: res.NeedLogin,
		Duration:  res.Elapsed.String(),
	})
}
