// Package tistory implements the Tistory adapter: profile and cookie
// browser tiers, the legacy open-API write endpoint, and the manual-copy
// fallback.
package tistory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

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
	loginURL = "https://accounts.kakao.com/login/?continue=https%3A%2F%2Fwww.tistory.com"
	homeURL  = "https://www.tistory.com"
	writeAPI = "https://www.tistory.com/apis/post/write"

	// Probes evaluated inside the browsing context.
	loggedInProbe  = `document.querySelector('.my_tistory, .link_profile') !== null`
	accountIDProbe = `(document.querySelector('.my_tistory .link_my')?.getAttribute('href') || '').replace(/^https?:\/\//, '').split('.')[0]`

	// Editor selectors. Tistory's new editor keeps the post body in a
	// CodeMirror instance behind the HTML tab.
	titleSelector   = "#post-title-inp"
	publishSelector = "#publish-layer-btn"
	confirmSelector = "#publish-btn"
)

// Adapter is the Tistory platform adapter.
type Adapter struct {
	chain    *strategy.Chain
	sessions session.Store
	logger   logger.Logger
}

// Profile describes Tistory to the session layer.
func Profile(cfg *config.Config) session.PlatformProfile {
	return session.PlatformProfile{
		Platform:       platform.NameTistory,
		LoginURL:       loginURL,
		HomeURL:        homeURL,
		LoggedInProbe:  loggedInProbe,
		AccountIDProbe: accountIDProbe,
		ProfileDir:     cfg.ProfileDir(platform.NameTistory),
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
		strategy.NewEndpointStrategy(writeEndpoint(http.DefaultClient, writeAPI)),
	}

	return &Adapter{
		chain:    strategy.NewChain(platform.NameTistory, strategies, strategy.NewClipboard(), policy, log),
		sessions: sessions,
		logger:   log,
	}
}

// Name implements platform.Platform.
func (a *Adapter) Name() string { return platform.NameTistory }

// Publish implements platform.Platform.
func (a *Adapter) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	return a.chain.Run(ctx, p, creds), nil
}

// TestConnection implements platform.Platform. It only consults the stored
// session so a connection test never spawns a browser.
func (a *Adapter) TestConnection(_ context.Context, creds *post.Credentials) (*post.PublishResult, error) {
	if creds != nil && creds.Token != "" {
		return &post.PublishResult{Success: true, Method: strategy.NameEndpoint}, nil
	}
	rec, err := a.sessions.Get(platform.NameTistory)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.LoggedIn {
		return post.Failed(errors.New(errors.ErrLoginRequired, "no live tistory session").WithPlatform(platform.NameTistory)), nil
	}
	return &post.PublishResult{Success: true, Method: strategy.NameBrowserProfile}, nil
}

// Capabilities implements platform.Platform.
func (a *Adapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Name:             platform.NameTistory,
		SupportedFormats: []string{"html"},
		MaxTitleLength:   100,
		SupportsTags:     true,
		SupportsImages:   true,
		RequiredSettings: []string{"TISTORY_BLOG_NAME"},
	}
}

// Close implements platform.Platform. The browser driver is shared and
// owned by the caller.
func (a *Adapter) Close() error { return nil }

// editorScript drives the Tistory write editor.
type editorScript struct{}

func (s *editorScript) Probe(ctx context.Context, sess browser.Session) error {
	var loggedIn bool
	if err := sess.Evaluate(ctx, loggedInProbe, &loggedIn); err != nil {
		return err
	}
	if !loggedIn {
		return errors.New(errors.ErrLoginRequired, "tistory session not authenticated").WithPlatform(platform.NameTistory)
	}
	return nil
}

func (s *editorScript) Publish(ctx context.Context, sess browser.Session, p *post.Post, creds *post.Credentials) (string, error) {
	blog := blogName(creds)
	if blog == "" {
		return "", errors.New(errors.ErrMissingBlogID, "tistory publish requires a blog name").WithPlatform(platform.NameTistory)
	}

	editorURL := fmt.Sprintf("https://%s.tistory.com/manage/newpost/?type=post", blog)
	if err := sess.Navigate(ctx, editorURL); err != nil {
		return "", err
	}
	if err := sess.WaitVisible(ctx, titleSelector); err != nil {
		return "", err
	}
	if err := sess.SetValue(ctx, titleSelector, p.Title); err != nil {
		return "", err
	}

	// The content area is not a plain form field; push the body through
	// the editor's own API so undo history and autosave stay coherent.
	setBody := fmt.Sprintf(`tinymce.activeEditor ? tinymce.activeEditor.setContent(%s) : document.querySelector('.CodeMirror').CodeMirror.setValue(%s)`,
		jsString(p.Content), jsString(p.Content))
	var ignored any
	if err := sess.Evaluate(ctx, setBody, &ignored); err != nil {
		return "", err
	}

	if len(p.Tags) > 0 {
		setTags := fmt.Sprintf(`document.querySelector('#tagText').value = %s`, jsString(strings.Join(p.Tags, ",")))
		if err := sess.Evaluate(ctx, setTags, &ignored); err != nil {
			return "", err
		}
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

// writeEndpoint publishes through the legacy open-API write call. Needs an
// access token; without one the tier reports a non-transient failure so
// the chain moves on immediately.
func writeEndpoint(client *http.Client, endpoint string) strategy.EndpointFunc {
	return func(ctx context.Context, p *post.Post, creds *post.Credentials) (string, error) {
		if creds == nil || creds.Token == "" {
			return "", errors.New(errors.ErrEndpointRejected, "tistory endpoint requires an access token").WithPlatform(platform.NameTistory)
		}
		blog := blogName(creds)
		if blog == "" {
			return "", errors.New(errors.ErrMissingBlogID, "tistory endpoint requires a blog name").WithPlatform(platform.NameTistory)
		}

		form := url.Values{
			"access_token": {creds.Token},
			"output":       {"json"},
			"blogName":     {blog},
			"title":        {p.Title},
			"content":      {p.Content},
			"visibility":   {"3"},
		}
		if len(p.Tags) > 0 {
			form.Set("tag", strings.Join(p.Tags, ","))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrTransportProtocol, "building tistory write request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConnection, "calling tistory write endpoint")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConnection, "reading tistory write response")
		}
		if resp.StatusCode != http.StatusOK {
			return "", errors.New(errors.ErrEndpointRejected,
				fmt.Sprintf("tistory write endpoint returned status %d", resp.StatusCode)).WithPlatform(platform.NameTistory)
		}

		var parsed struct {
			Tistory struct {
				Status string `json:"status"`
				URL    string `json:"url"`
			} `json:"tistory"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", errors.Wrap(err, errors.ErrTransportProtocol, "decoding tistory write response")
		}
		if parsed.Tistory.Status != "200" || parsed.Tistory.URL == "" {
			return "", errors.New(errors.ErrEndpointRejected,
				fmt.Sprintf("tistory write endpoint rejected the post (status %s)", parsed.Tistory.Status)).WithPlatform(platform.NameTistory)
		}
		return parsed.Tistory.URL, nil
	}
}

func blogName(creds *post.Credentials) string {
	if creds == nil {
		return ""
	}
	return creds.BlogID
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
