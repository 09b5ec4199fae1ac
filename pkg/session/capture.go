package session

import (
	"context"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// DefaultCaptureTimeout bounds the interactive login wait.
const DefaultCaptureTimeout = 5 * time.Minute

// loginPollInterval is how often capture probes for a completed login.
const loginPollInterval = 2 * time.Second

// Capturer runs the interactive one-time login flow: open a headful
// browser, wait for the human to authenticate, then extract and persist
// the full cookie set and account identifier.
type Capturer struct {
	driver  browser.Driver
	store   Store
	timeout time.Duration
	logger  logger.Logger
}

// NewCapturer creates a capturer.
func NewCapturer(driver browser.Driver, store Store, timeout time.Duration, log logger.Logger) *Capturer {
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	if log == nil {
		log = logger.Discard
	}
	return &Capturer{driver: driver, store: store, timeout: timeout, logger: log}
}

// Capture opens the platform's login page and waits, bounded, for the
// human to finish authenticating. On success the session record is
// persisted and returned.
func (c *Capturer) Capture(ctx context.Context, profile PlatformProfile) (*Record, error) {
	unlock := c.store.Lock(profile.Platform)
	defer unlock()

	sess, err := c.driver.NewSession(ctx, browser.SessionOptions{
		ProfileDir: profile.ProfileDir,
		Headless:   false,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Navigate(ctx, profile.LoginURL); err != nil {
		return nil, err
	}
	c.logger.Info("waiting for interactive login", "platform", profile.Platform, "timeout", c.timeout)

	deadline := time.Now().Add(c.timeout)
	for {
		var loggedIn bool
		if err := sess.Evaluate(ctx, profile.LoggedInProbe, &loggedIn); err == nil && loggedIn {
			break
		}
		if time.Now().After(deadline) {
			return nil, errors.New(errors.ErrCaptureTimeout, "interactive login was not completed in time").
				WithPlatform(profile.Platform)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(loginPollInterval):
		}
	}

	record := &Record{
		Platform:     profile.Platform,
		LoggedIn:     true,
		LastCaptured: time.Now(),
	}

	if profile.AccountIDProbe != "" {
		if err := sess.Evaluate(ctx, profile.AccountIDProbe, &record.BlogID); err != nil {
			c.logger.Warn("could not resolve account id during capture",
				"platform", profile.Platform, "error", err)
		}
	}

	cookies, err := sess.Cookies(ctx)
	if err != nil {
		return nil, err
	}
	record.Cookies = cookies

	if err := c.store.Put(record); err != nil {
		return nil, err
	}
	c.logger.Info("session captured", "platform", profile.Platform, "blog_id", record.BlogID, "cookies", len(cookies))
	return record, nil
}
