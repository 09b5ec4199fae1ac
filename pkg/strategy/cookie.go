package strategy

import (
	"context"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/session"
)

// CookieStrategy publishes through an ephemeral browser seeded with the
// cookies from the stored session record. Cheaper than the profile tier
// and immune to profile corruption, but it breaks first when the platform
// ties logins to device state.
type CookieStrategy struct {
	driver   browser.Driver
	sessions session.Store
	profile  session.PlatformProfile
	script   Script
	timeout  time.Duration
}

// NewCookieStrategy builds the cookie tier for one platform.
func NewCookieStrategy(driver browser.Driver, sessions session.Store, profile session.PlatformProfile, script Script, timeout time.Duration) *CookieStrategy {
	return &CookieStrategy{
		driver:   driver,
		sessions: sessions,
		profile:  profile,
		script:   script,
		timeout:  timeout,
	}
}

// Name implements Strategy.
func (s *CookieStrategy) Name() string { return NameCookie }

// Publish implements Strategy. Explicit request cookies win over the
// stored session record; neither being present is fatal.
func (s *CookieStrategy) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	cookies := s.requestCookies(creds)
	if len(cookies) == 0 {
		rec, err := s.sessions.Get(s.profile.Platform)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrNoSession, "reading session record").WithPlatform(s.profile.Platform)
		}
		if rec == nil || len(rec.Cookies) == 0 {
			return nil, errors.New(errors.ErrNoSession, "no cookies available for cookie publish").WithPlatform(s.profile.Platform)
		}
		if !rec.LoggedIn {
			return nil, errors.New(errors.ErrLoginRequired, "stored session marked stale").WithPlatform(s.profile.Platform)
		}
		cookies = rec.Cookies
	}

	sess, err := s.driver.NewSession(ctx, browser.SessionOptions{
		Headless:      true,
		ActionTimeout: s.timeout,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.SetCookies(ctx, cookies); err != nil {
		return nil, err
	}
	if err := sess.Navigate(ctx, s.profile.HomeURL); err != nil {
		return nil, err
	}
	if err := s.script.Probe(ctx, sess); err != nil {
		return nil, errors.Wrap(err, errors.ErrLoginRequired, "cookies rejected by platform").WithPlatform(s.profile.Platform)
	}

	url, err := s.script.Publish(ctx, sess, p, creds)
	if err != nil {
		return nil, err
	}
	return &post.PublishResult{Success: true, PostURL: url, Method: s.Name()}, nil
}

func (s *CookieStrategy) requestCookies(creds *post.Credentials) []browser.Cookie {
	if creds == nil || len(creds.Cookies) == 0 {
		return nil
	}
	out := make([]browser.Cookie, 0, len(creds.Cookies))
	for name, value := range creds.Cookies {
		out = append(out, browser.Cookie{Name: name, Value: value})
	}
	return out
}
