package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
)

// defaultActionTimeout bounds an action when the caller sets none.
const defaultActionTimeout = 45 * time.Second

// ChromeDriver drives a local Chrome/Chromium via the DevTools protocol.
type ChromeDriver struct{}

// NewChromeDriver creates a ChromeDriver.
func NewChromeDriver() *ChromeDriver {
	return &ChromeDriver{}
}

// NewSession spawns a browser context. The returned session owns the
// allocator and must be closed to reap the browser process.
func (d *ChromeDriver) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	s := &chromeSession{
		ctx:           browserCtx,
		actionTimeout: timeout,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}

	// Start the browser now so a spawn failure surfaces here, not on the
	// first action.
	if err := s.run(ctx, chromedp.ActionFunc(func(context.Context) error { return nil })); err != nil {
		s.Close()
		return nil, errors.Wrap(err, errors.ErrNavigationFailed, "start browser context")
	}
	return s, nil
}

type chromeSession struct {
	ctx           context.Context
	actionTimeout time.Duration
	cancel        context.CancelFunc
}

// run executes actions bounded by the action timeout and by the caller's
// context.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.actionTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return errors.Wrap(err, errors.ErrNavigationFailed, "navigate").WithDetails(url)
	}
	return nil
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return errors.Wrap(err, errors.ErrNavigationFailed, "wait visible").WithDetails(selector)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return errors.Wrap(err, errors.ErrNavigationFailed, "click").WithDetails(selector)
	}
	return nil
}

func (s *chromeSession) SetValue(ctx context.Context, selector, value string) error {
	if err := s.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery)); err != nil {
		return errors.Wrap(err, errors.ErrNavigationFailed, "set value").WithDetails(selector)
	}
	return nil
}

func (s *chromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	if err := s.run(ctx, chromedp.Evaluate(expr, out)); err != nil {
		return errors.Wrap(err, errors.ErrNavigationFailed, "evaluate script")
	}
	return nil
}

func (s *chromeSession) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(actionCtx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(actionCtx)
		return err
	}))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNavigationFailed, "read cookies")
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			cookie.Expires = time.Unix(int64(c.Expires), 0)
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

func (s *chromeSession) SetCookies(ctx context.Context, cookies []Cookie) error {
	err := s.run(ctx, chromedp.ActionFunc(func(actionCtx context.Context) error {
		for _, c := range cookies {
			param := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if !c.Expires.IsZero() {
				expires := cdp.TimeSinceEpoch(c.Expires)
				param = param.WithExpires(&expires)
			}
			if err := param.Do(actionCtx); err != nil {
				return err
			}
		}
		return nil
	}))
	if err != nil {
		return errors.Wrap(err, errors.ErrNavigationFailed, "install cookies")
	}
	return nil
}

// Close cancels the browser context and allocator, reaping the process.
func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
