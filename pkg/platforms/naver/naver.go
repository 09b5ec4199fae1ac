// Package naver implements the Naver Blog adapter. Naver exposes no write
// API, so the chain is browser tiers plus the manual-copy fallback.
package naver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/config"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/retry"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/session"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/strategy"
)

const (
	loginURL = "https://nid.naver.com/nidlogin.login?url=https%3A%2F%2Fblog.naver.com"
	homeURL  = "https://blog.naver.com"

	loggedInProbe  = `document.querySelector('#account, .MyView-module__my_info') !== null`
	accountIDProbe = `(document.querySelector('.MyView-module__link_login')?.dataset?.clk || '')`

	// SmartEditor ONE runs inside the mainFrame iframe; probes and the
	// publish flow address it through the top document.
	titleSelector   = ".se-title-text .se-text-paragraph"
	publishSelector = ".publish_btn__m9KHH, [data-click-area='tpb.publish']"
	confirmSelector = ".confirm_btn__WEaBq, [data-click-area='tpb*i.publish']"
)

// Adapter is the Naver Blog platform adapter.
type Adapter struct {
	chain    *strategy.Chain
	sessions session.Store
	logger   logger.Logger
}

// Profile describes Naver Blog to the session layer.
func Profile(cfg *config.Config) session.PlatformProfile {
	return session.PlatformProfile{
		Platform:       platform.NameNaver,
		LoginURL:       loginURL,
		HomeURL:        homeURL,
		LoggedInProbe:  loggedInProbe,
		AccountIDProbe: accountIDProbe,
		ProfileDir:     cfg.ProfileDir(platform.NameNaver),
	}
}

// New assembles the adapter and its strategy chain.
func New(cfg *config.Config, driver browser.Driver, sessions session.Store, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard
	}
	profile := Profile(cfg)
	script := &editorScript{}
	policy := retry.New(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, log)

	strategies := []strategy.Strategy{
		strategy.NewProfileStrategy(driver, sessions, profile, script, cfg.Headless, cfg.NavigationTimeout),
		strategy.NewCookieStrategy(driver, sessions, profile, script, cfg.NavigationTimeout),
	}

	return &Adapter{
		chain:    strategy.NewChain(platform.NameNaver, strategies, strategy.NewClipboard(), policy, log),
		sessions: sessions,
		logger:   log,
	}
}

// Name implements platform.Platform.
func (a *Adapter) Name() string { return platform.NameNaver }

// Publish implements platform.Platform.
func (a *Adapter) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	return a.chain.Run(ctx, p, creds), nil
}

// TestConnection implements platform.Platform.
func (a *Adapter) TestConnection(_ context.Context, _ *post.Credentials) (*post.PublishResult, error) {
	rec, err := a.sessions.Get(platform.NameNaver)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.LoggedIn {
		return post.Failed(errors.New(errors.ErrLoginRequired, "no live naver session").WithPlatform(platform.NameNaver)), nil
	}
	return &post.PublishResult{Success: true, Method: strategy.NameBrowserProfile}, nil
}

// Capabilities implements platform.Platform.
func (a *Adapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Name:             platform.NameNaver,
		SupportedFormats: []string{"html"},
		MaxTitleLength:   100,
		SupportsTags:     true,
		SupportsImages:   true,
		RequiredSettings: []string{"NAVER_BLOG_ID"},
	}
}

// Close implements platform.Platform.
func (a *Adapter) Close() error { return nil }

// editorScript drives SmartEditor ONE.
type editorScript struct{}

func (s *editorScript) Probe(ctx context.Context, sess browser.Session) error {
	var loggedIn bool
	if err := sess.Evaluate(ctx, loggedInProbe, &loggedIn); err != nil {
		return err
	}
	if !loggedIn {
		return errors.New(errors.ErrLoginRequired, "naver session not authenticated").WithPlatform(platform.NameNaver)
	}
	return nil
}

func (s *editorScript) Publish(ctx context.Context, sess browser.Session, p *post.Post, creds *post.Credentials) (string, error) {
	blogID := ""
	if creds != nil {
		blogID = creds.BlogID
	}
	if blogID == "" {
		return "", errors.New(errors.ErrMissingBlogID, "naver publish requires a blog id").WithPlatform(platform.NameNaver)
	}

	editorURL := fmt.Sprintf("https://blog.naver.com/%s/postwrite", blogID)
	if err := sess.Navigate(ctx, editorURL); err != nil {
		return "", err
	}
	if err := sess.WaitVisible(ctx, titleSelector); err != nil {
		return "", err
	}

	// SmartEditor rejects synthetic input events on its content area, so
	// title and body go in through the editor document directly.
	var ignored any
	setTitle := fmt.Sprintf(`document.querySelector(%s).textContent = %s`,
		jsString(titleSelector), jsString(p.Title))
	if err := sess.Evaluate(ctx, setTitle, &ignored); err != nil {
		return "", err
	}

	setBody := fmt.Sprintf(`(() => {
		const area = document.querySelector('.se-module-text[contenteditable], .se-content');
		if (!area) { throw new Error('editor content area not found'); }
		area.innerHTML = %s;
		return true;
	})()`, jsString(p.Content))
	if err := sess.Evaluate(ctx, setBody, &ignored); err != nil {
		return "", err
	}

	if err := sess.Click(ctx, publishSelector); err != nil {
		return "", err
	}
	if err := sess.WaitVisible(ctx, confirmSelector); err != nil {
		return "", err
	}
	if err := sess.Click(ctx, confirmSelector); err != nil {
		return "", err
	}

	var postURL string
	if err := sess.Evaluate(ctx, `window.location.href`, &postURL); err != nil {
		return "", err
	}
	return postURL, nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
