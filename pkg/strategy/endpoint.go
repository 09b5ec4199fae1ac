package strategy

import (
	"context"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// EndpointFunc performs a direct HTTP publish against a platform-internal
// or documented endpoint, returning the published post URL.
type EndpointFunc func(ctx context.Context, p *post.Post, creds *post.Credentials) (string, error)

// EndpointStrategy publishes without a browser by calling the platform's
// write endpoint directly. Fastest tier but the most brittle: the
// endpoints are undocumented on most platforms and change without notice,
// so it sits behind the browser tiers.
type EndpointStrategy struct {
	fn EndpointFunc
}

// NewEndpointStrategy wraps a platform endpoint call as a chain tier.
func NewEndpointStrategy(fn EndpointFunc) *EndpointStrategy {
	return &EndpointStrategy{fn: fn}
}

// Name implements Strategy.
func (s *EndpointStrategy) Name() string { return NameEndpoint }

// Publish implements Strategy.
func (s *EndpointStrategy) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	url, err := s.fn(ctx, p, creds)
	if err != nil {
		return nil, err
	}
	return &post.PublishResult{Success: true, PostURL: url, Method: s.Name()}, nil
}
