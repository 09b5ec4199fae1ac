package session

import (
	"context"
	"sync"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// DefaultRefreshInterval between silent session revisits.
const DefaultRefreshInterval = 30 * time.Minute

// Refresher is the long-lived service that periodically revisits each
// platform with the persisted profile, re-extracts cookie material, and
// marks records stale when the platform has logged the profile out.
type Refresher struct {
	driver   browser.Driver
	store    Store
	profiles []PlatformProfile
	interval time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewRefresher creates a refresher over the given platform profiles.
func NewRefresher(driver browser.Driver, store Store, profiles []PlatformProfile, interval time.Duration, log logger.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if log == nil {
		log = logger.Discard
	}
	return &Refresher{
		driver:   driver,
		store:    store,
		profiles: profiles,
		interval: interval,
		logger:   log,
	}
}

// Start launches the refresh loop. Calling Start on a running refresher
// is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	go r.loop(loopCtx)
}

// Stop halts the refresh loop and waits for the current pass to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}

// RefreshAll refreshes every profile once. Exposed so callers can force a
// pass outside the timer.
func (r *Refresher) RefreshAll(ctx context.Context) {
	for _, profile := range r.profiles {
		if ctx.Err() != nil {
			return
		}
		if err := r.refreshOne(ctx, profile); err != nil {
			r.logger.Warn("session refresh failed", "platform", profile.Platform, "error", err)
		}
	}
}

func (r *Refresher) refreshOne(ctx context.Context, profile PlatformProfile) error {
	unlock := r.store.Lock(profile.Platform)
	defer unlock()

	record, err := r.store.Get(profile.Platform)
	if err != nil {
		return err
	}
	if record == nil {
		// Nothing captured yet; nothing to keep alive.
		return nil
	}

	sess, err := r.driver.NewSession(ctx, browser.SessionOptions{
		ProfileDir: profile.ProfileDir,
		Headless:   true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Navigate(ctx, profile.HomeURL); err != nil {
		return err
	}

	var loggedIn bool
	if err := sess.Evaluate(ctx, profile.LoggedInProbe, &loggedIn); err != nil {
		return err
	}

	record.LastRefreshed = time.Now()
	if !loggedIn {
		// Keep the record but mark it stale so publishes surface a
		// clear login-required signal instead of failing opaquely.
		record.LoggedIn = false
		r.logger.Warn("session invalidated by platform", "platform", profile.Platform)
		return r.store.Put(record)
	}

	cookies, err := sess.Cookies(ctx)
	if err != nil {
		return err
	}
	record.Cookies = cookies
	record.LoggedIn = true
	r.logger.Debug("session refreshed", "platform", profile.Platform, "cookies", len(cookies))
	return r.store.Put(record)
}
