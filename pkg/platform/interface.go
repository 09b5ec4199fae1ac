// Package platform defines the adapter contract binding a platform
// identifier to its delivery strategy chain and content rules.
package platform

import (
	"context"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Known platform identifiers. The registry is assembled from these at
// startup; an identifier outside this set fails resolution.
const (
	NameTistory = "tistory"
	NameNaver   = "naver"
	NameMedium  = "medium"
)

// Platform is the adapter contract every supported platform implements.
// Adapters encapsulate how a platform is driven; callers only see the
// publish and connection-test operations.
type Platform interface {
	// Name returns the unique platform identifier.
	Name() string

	// Publish delivers the post using the adapter's strategy chain and
	// returns a result. Automation failures are converted into a failed
	// result at this boundary; err is reserved for programming errors.
	Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error)

	// TestConnection verifies that the adapter can reach the platform
	// with the given credentials.
	TestConnection(ctx context.Context, creds *post.Credentials) (*post.PublishResult, error)

	// Capabilities describes what the platform supports.
	Capabilities() Capabilities

	// Close releases adapter-held resources.
	Close() error
}

// Capabilities describes what a platform adapter can do.
type Capabilities struct {
	Name               string   `json:"name"`
	SupportedFormats   []string `json:"supported_formats"`
	MaxTitleLength     int      `json:"max_title_length"`
	SupportsTags       bool     `json:"supports_tags"`
	SupportsImages     bool     `json:"supports_images"`
	SupportsScheduling bool     `json:"supports_scheduling"`
	RequiredSettings   []string `json:"required_settings"`
}
