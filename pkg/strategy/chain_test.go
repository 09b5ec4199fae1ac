package strategy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/retry"
)

type scriptedStrategy struct {
	name  string
	calls int
	fn    func(call int) (*post.PublishResult, error)
}

func (s *scriptedStrategy) Name() string { return s.name }

func (s *scriptedStrategy) Publish(ctx context.Context, p *post.Post, creds *post.Credentials) (*post.PublishResult, error) {
	s.calls++
	return s.fn(s.calls)
}

func fastPolicy(attempts int) *retry.Policy {
	return retry.New(attempts, time.Microsecond, nil)
}

func samplePost() *post.Post {
	return &post.Post{
		Title:   "Release notes",
		Content: "<p>hello</p>",
		Tags:    []string{"go", "automation"},
	}
}

func TestChainFirstStrategySuccessShortCircuits(t *testing.T) {
	first := &scriptedStrategy{name: "profile", fn: func(int) (*post.PublishResult, error) {
		return &post.PublishResult{Success: true, PostURL: "https://example.com/1"}, nil
	}}
	second := &scriptedStrategy{name: "cookie", fn: func(int) (*post.PublishResult, error) {
		t.Fatal("second strategy must not run")
		return nil, nil
	}}

	chain := NewChain("tistory", []Strategy{first, second}, NewClipboard(), fastPolicy(3), nil)
	res := chain.Run(context.Background(), samplePost(), nil)

	require.True(t, res.Success)
	assert.Equal(t, "https://example.com/1", res.PostURL)
	assert.Equal(t, "profile", res.Method)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestChainTransientFailureRetriesBeforeNextTier(t *testing.T) {
	flaky := &scriptedStrategy{name: "profile", fn: func(call int) (*post.PublishResult, error) {
		if call < 3 {
			return nil, errors.New(errors.ErrTimeout, "navigation timed out")
		}
		return &post.PublishResult{Success: true, PostURL: "https://example.com/2"}, nil
	}}

	chain := NewChain("tistory", []Strategy{flaky}, NewClipboard(), fastPolicy(3), nil)
	res := chain.Run(context.Background(), samplePost(), nil)

	require.True(t, res.Success)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, 3, res.Retried)
}

func TestChainNonTransientFailureMovesToNextTier(t *testing.T) {
	broken := &scriptedStrategy{name: "profile", fn: func(int) (*post.PublishResult, error) {
		return nil, errors.New(errors.ErrEndpointRejected, "editor markup changed")
	}}
	rescuer := &scriptedStrategy{name: "cookie", fn: func(int) (*post.PublishResult, error) {
		return &post.PublishResult{Success: true, PostURL: "https://example.com/3"}, nil
	}}

	chain := NewChain("naver", []Strategy{broken, rescuer}, NewClipboard(), fastPolicy(3), nil)
	res := chain.Run(context.Background(), samplePost(), nil)

	require.True(t, res.Success)
	assert.Equal(t, "cookie", res.Method)
	assert.Equal(t, 1, broken.calls, "non-transient failure must not be retried")
	assert.Equal(t, 1, rescuer.calls)
}

func TestChainExhaustionFallsBackToClipboard(t *testing.T) {
	p := samplePost()
	down := func(int) (*post.PublishResult, error) {
		return nil, errors.New(errors.ErrEndpointRejected, "rejected")
	}
	first := &scriptedStrategy{name: "profile", fn: down}
	second := &scriptedStrategy{name: "endpoint", fn: down}

	chain := NewChain("medium", []Strategy{first, second}, NewClipboard(), fastPolicy(2), nil)
	res := chain.Run(context.Background(), p, nil)

	require.True(t, res.Success, "clipboard fallback still counts as a handled publish")
	assert.Equal(t, post.MethodClipboard, res.Method)
	assert.NotEmpty(t, res.Warning)
	assert.Contains(t, res.Payload, p.Title)
	assert.Contains(t, res.Payload, p.Content)
	assert.Contains(t, res.Payload, "#go")
}

func TestChainFatalFailureAbortsAutomatedTiers(t *testing.T) {
	expired := &scriptedStrategy{name: "profile", fn: func(int) (*post.PublishResult, error) {
		return nil, errors.New(errors.ErrLoginRequired, "session expired").WithPlatform("tistory")
	}}
	never := &scriptedStrategy{name: "cookie", fn: func(int) (*post.PublishResult, error) {
		t.Fatal("fatal failure must abort the remaining tiers")
		return nil, nil
	}}

	chain := NewChain("tistory", []Strategy{expired, never}, NewClipboard(), fastPolicy(3), nil)
	res := chain.Run(context.Background(), samplePost(), nil)

	require.False(t, res.Success)
	assert.True(t, res.NeedLogin)
	assert.Equal(t, post.MethodClipboard, res.Method)
	assert.NotEmpty(t, res.Payload, "payload is still handed over so the author can publish by hand")
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, 1, expired.calls, "fatal failure must not be retried")
	assert.Zero(t, never.calls)
}

func TestChainWithoutFallbackFails(t *testing.T) {
	down := &scriptedStrategy{name: "endpoint", fn: func(int) (*post.PublishResult, error) {
		return nil, errors.New(errors.ErrEndpointRejected, "rejected")
	}}

	chain := NewChain("medium", []Strategy{down}, nil, fastPolicy(1), nil)
	res := chain.Run(context.Background(), samplePost(), nil)

	require.False(t, res.Success)
	assert.Contains(t, res.Error, string(errors.ErrStrategyExhausted))
}

func TestChainContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hang := &scriptedStrategy{name: "profile", fn: func(int) (*post.PublishResult, error) {
		cancel()
		return nil, errors.New(errors.ErrTimeout, "timed out")
	}}

	chain := NewChain("tistory", []Strategy{hang}, NewClipboard(), fastPolicy(3), nil)
	res := chain.Run(ctx, samplePost(), nil)

	require.False(t, res.Success)
	assert.False(t, res.NeedLogin)
}

func TestClipboardPayloadLayout(t *testing.T) {
	payload := NewClipboard().Payload(samplePost())

	lines := strings.SplitN(payload, "\n", 4)
	require.Len(t, lines, 4)
	assert.Equal(t, "Release notes", lines[0])
	assert.Equal(t, "#go #automation", lines[1])
	assert.Empty(t, lines[2])
	assert.Equal(t, "<p>hello</p>", lines[3])
}

func TestClipboardPayloadCarriesImages(t *testing.T) {
	p := samplePost()
	p.Images = []post.Image{
		{URL: "https://cdn.example.com/a.png", Caption: "architecture"},
		{URL: "https://cdn.example.com/b.png"},
	}

	payload := NewClipboard().Payload(p)

	assert.Contains(t, payload, "https://cdn.example.com/a.png (architecture)")
	lines := strings.Split(payload, "\n")
	assert.Equal(t, "https://cdn.example.com/b.png", lines[len(lines)-1])
}
