package tistory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
)

func TestWriteEndpointPublishes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tok-1", r.Form.Get("access_token"))
		assert.Equal(t, "myblog", r.Form.Get("blogName"))
		assert.Equal(t, "Release notes", r.Form.Get("title"))
		assert.Equal(t, "go,automation", r.Form.Get("tag"))
		w.Write([]byte(`{"tistory":{"status":"200","url":"https://myblog.tistory.com/42"}}`))
	}))
	defer srv.Close()

	fn := writeEndpoint(srv.Client(), srv.URL)
	url, err := fn(context.Background(), &post.Post{
		Title:   "Release notes",
		Content: "<p>body</p>",
		Tags:    []string{"go", "automation"},
	}, &post.Credentials{Token: "tok-1", BlogID: "myblog"})

	require.NoError(t, err)
	assert.Equal(t, "https://myblog.tistory.com/42", url)
}

func TestWriteEndpointRequiresToken(t *testing.T) {
	fn := writeEndpoint(http.DefaultClient, "http://unused")
	_, err := fn(context.Background(), &post.Post{Title: "x"}, &post.Credentials{BlogID: "myblog"})
	require.Error(t, err)
	pubErr := errors.AsPublishError(err)
	require.NotNil(t, pubErr)
	assert.Equal(t, errors.ErrEndpointRejected, pubErr.Code)
}

func TestWriteEndpointRequiresBlogName(t *testing.T) {
	fn := writeEndpoint(http.DefaultClient, "http://unused")
	_, err := fn(context.Background(), &post.Post{Title: "x"}, &post.Credentials{Token: "tok-1"})
	require.Error(t, err)
	pubErr := errors.AsPublishError(err)
	require.NotNil(t, pubErr)
	assert.Equal(t, errors.ErrMissingBlogID, pubErr.Code)
}

func TestWriteEndpointRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"tistory":{"status":"403"}}`))
	}))
	defer srv.Close()

	fn := writeEndpoint(srv.Client(), srv.URL)
	_, err := fn(context.Background(), &post.Post{Title: "x", Content: "y"},
		&post.Credentials{Token: "tok-1", BlogID: "myblog"})

	require.Error(t, err)
	pubErr := errors.AsPublishError(err)
	require.NotNil(t, pubErr)
	assert.Equal(t, errors.ErrEndpointRejected, pubErr.Code)
	assert.False(t, errors.IsTransient(err), "a rejected write must not be retried")
}

func TestPublishScriptRequiresBlogName(t *testing.T) {
	script := &editorScript{}
	_, err := script.Publish(context.Background(), nil, &post.Post{Title: "x"}, nil)
	require.Error(t, err)
	pubErr := errors.AsPublishError(err)
	require.NotNil(t, pubErr)
	assert.Equal(t, errors.ErrMissingBlogID, pubErr.Code)
}
