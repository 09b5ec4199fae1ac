// Package handlers implements the JSON API route handlers.
package handlers

import (
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

// PublishRequest is the wire form of one publish call.
type PublishRequest struct {
	Platform           string             `json:"platform"`
	Post               *PostPayload       `json:"post"`
	Credentials        *CredentialPayload `json:"credentials,omitempty"`
	SkipDuplicateCheck bool               `json:"skip_duplicate_check,omitempty"`
}

// PostPayload is the wire form of the authored post.
type PostPayload struct {
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Tags        []string       `json:"tags,omitempty"`
	Images      []ImagePayload `json:"images,omitempty"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
}

// ImagePayload is the wire form of one attached image.
type ImagePayload struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// CredentialPayload is the wire form of explicit credentials.
type CredentialPayload struct {
	BlogID  string            `json:"blog_id,omitempty"`
	Token   string            `json:"token,omitempty"`
	Cookies map[string]string `json:"cookies,omitempty"`
}

// PublishResponse is the wire form of a publish outcome.
type PublishResponse struct {
	Success     bool   `json:"success"`
	PostURL     string `json:"post_url,omitempty"`
	Method      string `json:"method,omitempty"`
	Error       string `json:"error,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Payload     string `json:"payload,omitempty"`
	Retried     int    `json:"retried,omitempty"`
	IsDuplicate bool   `json:"is_duplicate,omitempty"`
	NeedLogin   bool   `json:"need_login,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

// ScheduledResponse acknowledges a deferred publish.
type ScheduledResponse struct {
	Scheduled bool      `json:"scheduled"`
	JobID     string    `json:"job_id"`
	NotBefore time.Time `json:"not_before"`
}

// ErrorResponse is the wire form of a request failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToRequest converts the wire request into the engine's request type.
func (r *PublishRequest) ToRequest() *post.PublishRequest {
	req := &post.PublishRequest{
		Platform:           r.Platform,
		SkipDuplicateCheck: r.SkipDuplicateCheck,
	}
	if r.Post != nil {
		req.Post = &post.Post{
			Title:   r.Post.Title,
			Content: r.Post.Content,
			Tags:    r.Post.Tags,
		}
		for _, img := range r.Post.Images {
			req.Post.Images = append(req.Post.Images, post.Image{URL: img.URL, Caption: img.Caption})
		}
		if r.Post.ScheduledAt != nil {
			at := *r.Post.ScheduledAt
			req.Post.ScheduledAt = &at
		}
	}
	if r.Credentials != nil {
		req.Credentials = &post.Credentials{
			BlogID:  r.Credentials.BlogID,
			Token:   r.Credentials.Token,
			Cookies: r.Credentials.Cookies,
		}
	}
	return req
}

// FromResult converts an engine result into the wire response.
func FromResult(res *post.PublishResult) *PublishResponse {
	return &PublishResponse{
		Success:     res.Success,
		PostURL:     res.PostURL,
		Method:      res.Method,
		Error:       res.Error,
		Warning:     res.Warning,
		Payload:     res.Payload,
		Retried:     res.Retried,
		IsDuplicate: res.IsDuplicate,
		NeedLogin:   res.NeedLogin,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
}
