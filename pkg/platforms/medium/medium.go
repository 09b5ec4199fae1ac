// Package medium implements the Medium adapter. Medium still honors its
// integration-token API, so the endpoint tier usually wins; the browser
// tiers cover accounts without a token.
package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

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
	loginURL = "https://medium.com/m/signin"
	homeURL  = "https://medium.com"
	apiBase  = "https://api.medium.com/v1"

	loggedInProbe  = `document.querySelector('[data-testid="headerAvatar"], .avatar') !== null`
	accountIDProbe = `(document.querySelector('[data-testid="headerAvatar"] img')?.alt || '')`

	titleSelector   = "h3[data-testid='editorTitleParagraph'], .graf--title"
	bodySelector    = "p[data-testid='editorParagraphText'], .graf--p"
	publishSelector = "[data-testid='publishButton'], [data-action='show-prepublish']"
	confirmSelector = "[data-testid='publishConfirmButton'], [data-action='publish']"
)

// Adapter is the Medium platform adapter.
type Adapter struct {
	chain    *strategy.Chain
	client   *http.Client
	sessions session.Store
	logger   logger.Logger
}

// Profile describes Medium to the session layer.
func Profile(cfg *config.Config) session.PlatformProfile {
	return session.PlatformProfile{
		Platform:       platform.NameMedium,
		LoginURL:       loginURL,
		HomeURL:        homeURL,
		LoggedInProbe:  loggedInProbe,
		AccountIDProbe: accountIDProbe,
		ProfileDir:     cfg.ProfileDir(platform.NameMedium),
	}
}

// New assembles the adapter and its strategy chain.
func New(cfg *config.Config, driver browser.Driver, sessions session.Store, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard
	}
	client := http.DefaultClient
	profile := Profile(cfg)
	script := &editorScript{}
	policy := retry.New(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, log)

	strategies := []strategy.Strategy{
		strategy.NewProfileStrategy(driver, sessions, profile, script, cfg.Headless, cfg.NavigationTimeout),
		strategy.NewCookieStrategy(driver, sessions, profile, script, cfg.NavigationTimeout),
		strategy.NewEndpointStrategy(apiEndpoint(client, apiBase)),
	}

	return &Adapter{
		chain:    strategy.NewChain(platform.NameMedium, strategies, strategy.NewClipboard(), policy, log),
		client:   client,
		sessions: sessions,
		logger:   log,
	}
}

// Name implements platform.Platform.
func (a *Adapter) Name() string { return platform.NameMedium }

// Publish implements platform.Platform.
func (a *Adapter) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	return a.chain.Run(ctx, p, creds), nil
}

// TestConnection implements platform.Platform. With a token it calls the
// API's identity endpoint; otherwise it falls back to the session record.
func (a *Adapter) TestConnection(ctx context.Context, creds *post.Credentials) (*post.PublishResult, error) {
	if creds != nil && creds.Token != "" {
		if _, err := fetchUserID(ctx, a.client, apiBase, creds.Token); err != nil {
			return post.Failed(err), nil
		}
		return &post.PublishResult{Success: true, Method: strategy.NameEndpoint}, nil
	}
	rec, err := a.sessions.Get(platform.NameMedium)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.LoggedIn {
		return post.Failed(errors.New(errors.ErrLoginRequired, "no live medium session").WithPlatform(platform.NameMedium)), nil
	}
	return &post.PublishResult{Success: true, Method: strategy.NameBrowserProfile}, nil
}

// Capabilities implements platform.Platform.
func (a *Adapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Name:             platform.NameMedium,
		SupportedFormats: []string{"markdown", "html"},
		MaxTitleLength:   100,
		SupportsTags:     true,
		SupportsImages:   true,
		RequiredSettings: []string{"MEDIUM_TOKEN"},
	}
}

// Close implements platform.Platform.
func (a *Adapter) Close() error { return nil }

// editorScript drives the Medium story editor.
type editorScript struct{}

func (s *editorScript) Probe(ctx context.Context, sess browser.Session) error {
	var loggedIn bool
	if err := sess.Evaluate(ctx, loggedInProbe, &loggedIn); err != nil {
		return err
	}
	if !loggedIn {
		return errors.New(errors.ErrLoginRequired, "medium session not authenticated").WithPlatform(platform.NameMedium)
	}
	return nil
}

func (s *editorScript) Publish(ctx context.Context, sess browser.Session, p *post.Post, _ *post.Credentials) (string, error) {
	if err := sess.Navigate(ctx, "https://medium.com/new-story"); err != nil {
		return "", err
	}
	if err := sess.WaitVisible(ctx, titleSelector); err != nil {
		return "", err
	}

	var ignored any
	setTitle := fmt.Sprintf(`document.querySelector(%s).textContent = %s`,
		jsString(titleSelector), jsString(p.Title))
	if err := sess.Evaluate(ctx, setTitle, &ignored); err != nil {
		return "", err
	}
	setBody := fmt.Sprintf(`document.querySelector(%s).textContent = %s`,
		jsString(bodySelector), jsString(p.Content))
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

// apiEndpoint publishes through the integration-token API.
func apiEndpoint(client *http.Client, base string) strategy.EndpointFunc {
	return func(ctx context.Context, p *post.Post, creds *post.Credentials) (string, error) {
		if creds == nil || creds.Token == "" {
			return "", errors.New(errors.ErrEndpointRejected, "medium endpoint requires an integration token").WithPlatform(platform.NameMedium)
		}

		userID, err := fetchUserID(ctx, client, base, creds.Token)
		if err != nil {
			return "", err
		}

		payload := map[string]any{
			"title":         p.Title,
			"contentFormat": "markdown",
			"content":       p.Content,
			"publishStatus": "public",
		}
		if len(p.Tags) > 0 {
			payload["tags"] = p.Tags
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrTransportProtocol, "encoding medium post")
		}

		postsURL := fmt.Sprintf("%s/users/%s/posts", base, userID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, postsURL, bytes.NewReader(body))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrTransportProtocol, "building medium post request")
		}
		req.Header.Set("Authorization", "Bearer "+creds.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConnection, "calling medium posts endpoint")
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConnection, "reading medium response")
		}
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return "", errors.New(errors.ErrEndpointRejected,
				fmt.Sprintf("medium posts endpoint returned status %d", resp.StatusCode)).WithPlatform(platform.NameMedium)
		}

		var parsed struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return "", errors.Wrap(err, errors.ErrTransportProtocol, "decoding medium response")
		}
		if parsed.Data.URL == "" {
			return "", errors.New(errors.ErrEndpointRejected, "medium response carried no post url").WithPlatform(platform.NameMedium)
		}
		return parsed.Data.URL, nil
	}
}

// fetchUserID resolves the token owner's user id via /me.
func fetchUserID(ctx context.Context, client *http.Client, base, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/me", nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTransportProtocol, "building medium identity request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConnection, "calling medium identity endpoint")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errors.New(errors.ErrLoginRequired, "medium token rejected").WithPlatform(platform.NameMedium)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.ErrEndpointRejected,
			fmt.Sprintf("medium identity endpoint returned status %d", resp.StatusCode)).WithPlatform(platform.NameMedium)
	}

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrap(err, errors.ErrTransportProtocol, "decoding medium identity response")
	}
	if parsed.Data.ID == "" {
		return "", errors.New(errors.ErrEndpointRejected, "medium identity response carried no user id").WithPlatform(platform.NameMedium)
	}
	return parsed.Data.ID, nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
