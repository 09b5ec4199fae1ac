// Package session persists per-platform credential and cookie material:
// interactive capture, silent background refresh, and read-only lookup.
package session

import (
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
)

// Record is the singular session for one platform. It is overwritten in
// place on refresh and never historized. A detected logout marks it stale
// (LoggedIn=false) instead of deleting it, so the orchestrator can surface
// a clear login-required signal.
type Record struct {
	Platform      string           `json:"platform"`
	BlogID        string           `json:"blog_id,omitempty"`
	Cookies       []browser.Cookie `json:"cookies,omitempty"`
	LoggedIn      bool             `json:"logged_in"`
	LastCaptured  time.Time        `json:"last_captured"`
	LastRefreshed time.Time        `json:"last_refreshed"`
}

// Store persists session records. Adapters only read; capture and refresh
// are the only writers.
type Store interface {
	// Get returns the record for a platform, or nil when none exists.
	Get(platform string) (*Record, error)

	// Put overwrites the record for its platform.
	Put(record *Record) error

	// Lock acquires the per-platform advisory lock and returns the
	// release function. Capture and refresh hold it across their whole
	// browser interaction so two flows never race on the same profile.
	Lock(platform string) func()
}

// PlatformProfile tells capture and refresh how to recognize an
// authenticated state on one platform. Supplied by the platform adapter;
// the session layer stays platform-agnostic.
type PlatformProfile struct {
	// Platform is the platform identifier.
	Platform string

	// LoginURL is where the human authenticates interactively.
	LoginURL string

	// HomeURL is a cheap page to visit during silent refresh.
	HomeURL string

	// LoggedInProbe is a script expression evaluating to true when the
	// browsing context is authenticated.
	LoggedInProbe string

	// AccountIDProbe is a script expression resolving the blog or
	// account identifier. May be empty.
	AccountIDProbe string

	// ProfileDir is the persisted browser profile directory.
	ProfileDir string
}
