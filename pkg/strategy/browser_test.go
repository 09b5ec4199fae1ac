package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/session"
)

type stubSession struct{}

func (s *stubSession) Navigate(ctx context.Context, url string) error               { return nil }
func (s *stubSession) WaitVisible(ctx context.Context, selector string) error       { return nil }
func (s *stubSession) Click(ctx context.Context, selector string) error             { return nil }
func (s *stubSession) SetValue(ctx context.Context, selector, value string) error   { return nil }
func (s *stubSession) Evaluate(ctx context.Context, expr string, out any) error     { return nil }
func (s *stubSession) Cookies(ctx context.Context) ([]browser.Cookie, error)        { return nil, nil }
func (s *stubSession) SetCookies(ctx context.Context, cookies []browser.Cookie) error { return nil }
func (s *stubSession) Close() error                                                 { return nil }

type stubDriver struct {
	onNew func()
}

func (d *stubDriver) NewSession(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	if d.onNew != nil {
		d.onNew()
	}
	return &stubSession{}, nil
}

type stubScript struct {
	url string
}

func (s *stubScript) Publish(ctx context.Context, sess browser.Session, p *post.Post, creds *post.Credentials) (string, error) {
	return s.url, nil
}

func (s *stubScript) Probe(ctx context.Context, sess browser.Session) error { return nil }

func newTestStore(t *testing.T) *session.FileStore {
	t.Helper()
	store, err := session.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testProfile() session.PlatformProfile {
	return session.PlatformProfile{
		Platform: "tistory",
		HomeURL:  "https://example.com/manage",
	}
}

func TestProfilePublishWithoutRecordIsNotFatal(t *testing.T) {
	strat := NewProfileStrategy(&stubDriver{}, newTestStore(t), testProfile(), &stubScript{}, true, time.Second)

	res, err := strat.Publish(context.Background(), samplePost(), nil)

	require.Error(t, err)
	assert.Nil(t, res)
	perr := errors.AsPublishError(err)
	require.NotNil(t, perr)
	assert.Equal(t, errors.ErrNoSession, perr.Code)
	assert.False(t, errors.IsFatal(err), "a tier with nothing to work with must not abort the chain")
}

func TestProfilePublishStaleRecordIsFatal(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(&session.Record{Platform: "tistory", LoggedIn: false}))
	strat := NewProfileStrategy(&stubDriver{}, store, testProfile(), &stubScript{}, true, time.Second)

	_, err := strat.Publish(context.Background(), samplePost(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestCookiePublishWithoutRecordIsNotFatal(t *testing.T) {
	strat := NewCookieStrategy(&stubDriver{}, newTestStore(t), testProfile(), &stubScript{}, time.Second)

	_, err := strat.Publish(context.Background(), samplePost(), nil)

	require.Error(t, err)
	perr := errors.AsPublishError(err)
	require.NotNil(t, perr)
	assert.Equal(t, errors.ErrNoSession, perr.Code)
	assert.False(t, errors.IsFatal(err))
}

// A fresh deployment has no session files at all. Token credentials must
// still reach the endpoint tier instead of dying on the browser tiers.
func TestChainWithoutSessionStillReachesEndpointTier(t *testing.T) {
	store := newTestStore(t)
	profile := NewProfileStrategy(&stubDriver{}, store, testProfile(), &stubScript{}, true, time.Second)
	cookie := NewCookieStrategy(&stubDriver{}, store, testProfile(), &stubScript{}, time.Second)

	endpointCalls := 0
	endpoint := NewEndpointStrategy(func(ctx context.Context, p *post.Post, creds *post.Credentials) (string, error) {
		endpointCalls++
		if creds == nil || creds.Token == "" {
			return "", errors.New(errors.ErrLoginRequired, "token required")
		}
		return "https://example.com/by-token", nil
	})

	chain := NewChain("tistory", []Strategy{profile, cookie, endpoint}, NewClipboard(), fastPolicy(2), nil)
	res := chain.Run(context.Background(), samplePost(), &post.Credentials{Token: "valid-token"})

	require.True(t, res.Success)
	assert.Equal(t, NameEndpoint, res.Method)
	assert.Equal(t, "https://example.com/by-token", res.PostURL)
	assert.Equal(t, 1, endpointCalls)
	assert.False(t, res.NeedLogin)
}

func TestProfilePublishWaitsForSessionLock(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(&session.Record{Platform: "tistory", LoggedIn: true}))

	entered := make(chan struct{}, 1)
	driver := &stubDriver{onNew: func() { entered <- struct{}{} }}
	strat := NewProfileStrategy(driver, store, testProfile(), &stubScript{url: "https://example.com/4"}, true, time.Second)

	unlock := store.Lock("tistory")

	type outcome struct {
		res *post.PublishResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := strat.Publish(context.Background(), samplePost(), nil)
		done <- outcome{res, err}
	}()

	select {
	case <-entered:
		t.Fatal("publish opened a browser session while the platform lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case out := <-done:
		require.NoError(t, out.err)
		require.True(t, out.res.Success)
		assert.Equal(t, "https://example.com/4", out.res.PostURL)
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not proceed after the lock was released")
	}
	assert.Len(t, entered, 1)
}
