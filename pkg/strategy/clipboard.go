package strategy

import (
	"strings"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// Clipboard is the terminal tier of every chain. It never talks to the
// platform; it renders the post into a payload the author can paste into
// the web editor by hand.
type Clipboard struct{}

// NewClipboard returns the manual-copy fallback.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Name implements Strategy.
func (c *Clipboard) Name() string { return post.MethodClipboard }

// Payload renders the post as a single paste-ready block: title first,
// hashtag line when tags exist, then the body unchanged, then one line
// per attached image so the author can re-upload them by hand.
func (c *Clipboard) Payload(p *post.Post) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n")
	if len(p.Tags) > 0 {
		for i, tag := range p.Tags {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("#")
			b.WriteString(tag)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.Content)
	for _, img := range p.Images {
		b.WriteString("\n")
		b.WriteString(img.URL)
		if img.Caption != "" {
			b.WriteString(" (")
			b.WriteString(img.Caption)
			b.WriteString(")")
		}
	}
	return b.String()
}
