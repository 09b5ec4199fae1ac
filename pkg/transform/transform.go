// Package transform rewrites a post's body into the markup dialect a given
// platform expects. Every transformer is a pure function and is idempotent
// when the content is already in the platform's native form.
package transform

import (
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Meta carries post attributes a dialect rule may need beyond the body.
type Meta struct {
	Title string
	Tags  []string
}

// Func converts content into a platform's native dialect.
type Func func(content string, meta Meta) string

// Passthrough returns content unchanged.
func Passthrough(content string, _ Meta) string { return content }

// ForPlatform returns the transformer for a platform identifier.
// Unknown platforms get the passthrough transformer.
func ForPlatform(name string) Func {
	switch name {
	case platform.NameTistory:
		return Tistory
	case platform.NameNaver:
		return Naver
	case platform.NameMedium:
		return Medium
	default:
		return Passthrough
	}
}

// Apply transforms p's content for the platform and returns a copy; the
// input post is never mutated.
func Apply(name string, p *post.Post) *post.Post {
	fn := ForPlatform(name)
	out := p.Clone()
	out.Content = fn(p.Content, Meta{Title: p.Title, Tags: p.Tags})
	return out
}
