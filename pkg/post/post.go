// Package post defines the data model shared by the publish engine:
// the authored post, the publish request, and the publish result.
package post

import (
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
)

// Image is one attached image with an optional caption.
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Post is the authored content handed to the orchestrator. It is treated
// as immutable; content transformation produces a copy.
type Post struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags,omitempty"`
	Images      []Image    `json:"images,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Tags = append([]string(nil), p.Tags...)
	clone.Images = append([]Image(nil), p.Images...)
	if p.ScheduledAt != nil {
		at := *p.ScheduledAt
		clone.ScheduledAt = &at
	}
	return &clone
}

// TitleTruncateLen is the maximum title length recorded in the ledger and
// compared by the duplicate guard.
const TitleTruncateLen = 80

// TruncatedTitle returns the title shortened to TitleTruncateLen runes.
func (p *Post) TruncatedTitle() string {
	runes := []rune(p.Title)
	if len(runes) <= TitleTruncateLen {
		return p.Title
	}
	return string(runes[:TitleTruncateLen])
}

// Credentials carries platform-shaped authentication material supplied
// explicitly with a request, resolved from the environment, or read from
// the session store.
type Credentials struct {
	BlogID  string            `json:"blog_id,omitempty"`
	Token   string            `json:"token,omitempty"`
	Cookies map[string]string `json:"cookies,omitempty"`
}

// Empty reports whether the credentials carry no usable material.
func (c *Credentials) Empty() bool {
	return c == nil || (c.BlogID == "" && c.Token == "" && len(c.Cookies) == 0)
}

// PublishRequest is the immutable input to one orchestration call.
type PublishRequest struct {
	Platform           string       `json:"platform"`
	Credentials        *Credentials `json:"credentials,omitempty"`
	Post               *Post        `json:"post"`
	SkipDuplicateCheck bool         `json:"skip_duplicate_check,omitempty"`
}

// Validate checks the hard request gates: platform and post must be present
// and the post must carry a title.
func (r *PublishRequest) Validate() error {
	if r.Platform == "" {
		return errors.New(errors.ErrMissingPlatform, "publish request requires a platform")
	}
	if r.Post == nil {
		return errors.New(errors.ErrMissingPost, "publish request requires a post").WithPlatform(r.Platform)
	}
	if r.Post.Title == "" {
		return errors.New(errors.ErrEmptyTitle, "post requires a title").WithPlatform(r.Platform)
	}
	return nil
}

// MethodClipboard marks a result satisfied by the manual-copy fallback tier.
const MethodClipboard = "clipboard"

// PublishResult is the unified outcome of one orchestration call.
type PublishResult struct {
	Success     bool          `json:"success"`
	PostURL     string        `json:"post_url,omitempty"`
	Method      string        `json:"method,omitempty"`
	Error       string        `json:"error,omitempty"`
	Warning     string        `json:"warning,omitempty"`
	Payload     string        `json:"payload,omitempty"`
	Retried     int           `json:"retried,omitempty"`
	IsDuplicate bool          `json:"is_duplicate,omitempty"`
	NeedLogin   bool          `json:"need_login,omitempty"`
	Elapsed     time.Duration `json:"elapsed,omitempty"`
}

// Failed builds a failed result from an error.
func Failed(err error) *PublishResult {
	res := &PublishResult{Success: false}
	if err != nil {
		res.Error = err.Error()
		res.NeedLogin = errors.IsFatal(err)
	}
	return res
}
