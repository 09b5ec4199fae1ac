// Package browser abstracts driven-browser automation behind a small
// contract so strategies and the session store never touch the automation
// library directly.
package browser

import (
	"context"
	"time"
)

// Cookie is one captured browser cookie, including protocol-level flags
// that page scripts cannot read.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
}

// SessionOptions configures one automation context.
type SessionOptions struct {
	// ProfileDir is the persisted user data directory. Empty means an
	// ephemeral profile.
	ProfileDir string

	// Headless hides the browser window. Interactive capture needs it off.
	Headless bool

	// ActionTimeout bounds each individual navigation or action.
	ActionTimeout time.Duration
}

// Session is one live automation context. Every Session must be closed on
// every exit path; Close terminates the underlying browser process tree.
type Session interface {
	// Navigate loads a URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector is visible or the action
	// timeout elapses.
	WaitVisible(ctx context.Context, selector string) error

	// Click clicks the first node matching the selector.
	Click(ctx context.Context, selector string) error

	// SetValue sets the value of a form field.
	SetValue(ctx context.Context, selector, value string) error

	// Evaluate runs a script in the page and decodes its result into out.
	Evaluate(ctx context.Context, expr string, out any) error

	// Cookies returns every cookie of the browsing context, HttpOnly
	// cookies included.
	Cookies(ctx context.Context) ([]Cookie, error)

	// SetCookies installs cookies into the browsing context.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// Close releases the context and its OS-level processes.
	Close() error
}

// Driver creates automation sessions.
type Driver interface {
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
}
