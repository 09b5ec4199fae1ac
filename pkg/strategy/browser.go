package strategy

import (
	"context"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/session"
)

// Tier names as they appear in results and the ledger.
const (
	NameBrowserProfile = "browser-profile"
	NameCookie         = "cookie"
	NameEndpoint       = "endpoint"
)

// ProfileStrategy publishes through a persisted browser profile: the
// profile directory carries the platform login, so a fresh session inside
// it is already authenticated. Highest-fidelity tier, tried first.
type ProfileStrategy struct {
	driver   browser.Driver
	sessions session.Store
	profile  session.PlatformProfile
	script   Script
	headless bool
	timeout  time.Duration
}

// NewProfileStrategy builds the profile tier for one platform.
func NewProfileStrategy(driver browser.Driver, sessions session.Store, profile session.PlatformProfile, script Script, headless bool, timeout time.Duration) *ProfileStrategy {
	return &ProfileStrategy{
		driver:   driver,
		sessions: sessions,
		profile:  profile,
		script:   script,
		headless: headless,
		timeout:  timeout,
	}
}

// Name implements Strategy.
func (s *ProfileStrategy) Name() string { return NameBrowserProfile }

// Publish implements Strategy. A record that exists but went stale means
// credentials expired, which no later tier can recover from; a record
// that never existed just means this tier has nothing to work with, and
// the chain moves on to token-based tiers.
func (s *ProfileStrategy) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	rec, err := s.sessions.Get(s.profile.Platform)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNoSession, "reading session record").WithPlatform(s.profile.Platform)
	}
	if rec == nil {
		return nil, errors.New(errors.ErrNoSession, "no session record for profile publish").WithPlatform(s.profile.Platform)
	}
	if !rec.LoggedIn {
		return nil, errors.New(errors.ErrLoginRequired, "stored session marked stale").WithPlatform(s.profile.Platform)
	}

	// The capturer and refresher drive a browser through this same profile
	// directory; the per-platform lock keeps the two from sharing it.
	unlock := s.sessions.Lock(s.profile.Platform)
	defer unlock()

	sess, err := s.driver.NewSession(ctx, browser.SessionOptions{
		ProfileDir:    s.profile.ProfileDir,
		Headless:      s.headless,
		ActionTimeout: s.timeout,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := s.script.Probe(ctx, sess); err != nil {
		// The profile lost its login underneath the stored record. The
		// refresher owns the record; it will mark it stale on its next
		// pass. Strategies never write session state.
		return nil, errors.Wrap(err, errors.ErrLoginRequired, "profile session no longer authenticated").WithPlatform(s.profile.Platform)
	}

	url, err := s.script.Publish(ctx, sess, p, creds)
	if err != nil {
		return nil, err
	}
	return &post.PublishResult{Success: true, PostURL: url, Method: s.Name()}, nil
}
