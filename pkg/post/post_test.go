package post

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		req      PublishRequest
		wantCode errors.Code
	}{
		{
			name:     "missing platform",
			req:      PublishRequest{Post: &Post{Title: "Hello"}},
			wantCode: errors.ErrMissingPlatform,
		},
		{
			name:     "missing post",
			req:      PublishRequest{Platform: "tistory"},
			wantCode: errors.ErrMissingPost,
		},
		{
			name:     "empty title",
			req:      PublishRequest{Platform: "tistory", Post: &Post{}},
			wantCode: errors.ErrEmptyTitle,
		},
		{
			name: "valid",
			req:  PublishRequest{Platform: "tistory", Post: &Post{Title: "Hello"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			pubErr := errors.AsPublishError(err)
			if assert.NotNil(t, pubErr) {
				assert.Equal(t, tt.wantCode, pubErr.Code)
			}
		})
	}
}

func TestTruncatedTitle(t *testing.T) {
	short := &Post{Title: "Hello"}
	assert.Equal(t, "Hello", short.TruncatedTitle())

	long := &Post{Title: strings.Repeat("한", 120)}
	truncated := long.TruncatedTitle()
	assert.Equal(t, TitleTruncateLen, len([]rune(truncated)))
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Now()
	original := &Post{
		Title:       "Hello",
		Content:     "<p>World</p>",
		Tags:        []string{"go", "blog"},
		Images:      []Image{{URL: "https://example.com/a.png"}},
		ScheduledAt: &at,
	}

	clone := original.Clone()
	clone.Tags[0] = "changed"
	clone.Images[0].URL = "changed"
	*clone.ScheduledAt = at.Add(time.Hour)

	assert.Equal(t, "go", original.Tags[0])
	assert.Equal(t, "https://example.com/a.png", original.Images[0].URL)
	assert.True(t, original.ScheduledAt.Equal(at))
}

func TestCredentialsEmpty(t *testing.T) {
	assert.True(t, (*Credentials)(nil).Empty())
	assert.True(t, (&Credentials{}).Empty())
	assert.False(t, (&Credentials{BlogID: "myblog"}).Empty())
	assert.False(t, (&Credentials{Cookies: map[string]string{"sid": "x"}}).Empty())
}

func TestFailedResult(t *testing.T) {
	res := Failed(errors.New(errors.ErrLoginRequired, "session expired"))
	assert.False(t, res.Success)
	assert.True(t, res.NeedLogin)
	assert.Contains(t, res.Error, "SES001")
}
