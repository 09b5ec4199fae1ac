// Package strategy implements the per-platform delivery strategy chain:
// an ordered list of mechanisms tried until one succeeds, with a manual
// copy fallback as the last resort.
package strategy

import (
	"context"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Strategy is one concrete delivery mechanism within a chain. A failed
// attempt is classified by its error: transient failures are retried by the
// chain's retry policy, fatal (login-required) failures abort the remaining
// automated tiers, anything else moves to the next strategy.
type Strategy interface {
	// Name identifies the strategy in results and the ledger.
	Name() string

	// Publish attempts delivery.
	Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error)
}

// Script drives one platform's editor markup inside a browser session.
// Implementations live in the platform packages and are deliberately
// opaque to the chain.
type Script interface {
	// Publish fills in and submits the platform's editor, returning the
	// published post URL.
	Publish(ctx context.Context, sess browser.Session, p *post.Post, creds *post.Credentials) (string, error)

	// Probe verifies the session is usable for publishing.
	Probe(ctx context.Context, sess browser.Session) error
}
