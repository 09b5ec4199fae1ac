package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/history"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/publisher"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/queue"
)

type stubAdapter struct {
	name   string
	result *post.PublishResult
	got    *post.Post
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Publish(_ context.Context, p *post.Post, _ *post.Credentials) (*post.PublishResult, error) {
	a.got = p
	return a.result, nil
}

func (a *stubAdapter) TestConnection(context.Context, *post.Credentials) (*post.PublishResult, error) {
	return &post.PublishResult{Success: true}, nil
}

func (a *stubAdapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{Name: a.name}
}

func (a *stubAdapter) Close() error { return nil }

func newOrchestrator(t *testing.T, adapter platform.Platform) (*publisher.Orchestrator, history.Store) {
	t.Helper()
	ledger, err := history.NewFileStore(t.TempDir()+"/ledger.json", 0)
	require.NoError(t, err)

	registry := platform.NewRegistry()
	require.NoError(t, registry.Register(adapter))

	orch, err := publisher.New(publisher.Options{
		Registry: registry,
		Ledger:   ledger,
		Guard:    history.NewDuplicateGuard(ledger, 24*time.Hour),
	})
	require.NoError(t, err)
	return orch, ledger
}

func publishBody(platformName, title string) string {
	body, _ := json.Marshal(&PublishRequest{
		Platform: platformName,
		Post:     &PostPayload{Title: title, Content: "<p>body</p>"},
	})
	return string(body)
}

func TestPublishHandlerSuccess(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubAdapter{
		name:   platform.NameTistory,
		result: &post.PublishResult{Success: true, PostURL: "https://blog.example/1", Method: "cookie"},
	})
	h := NewPublishHandler(orch, nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(publishBody(platform.NameTistory, "A post")))
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PublishResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://blog.example/1", resp.PostURL)
	assert.Equal(t, "cookie", resp.Method)
}

func TestPublishHandlerCarriesImages(t *testing.T) {
	adapter := &stubAdapter{
		name:   platform.NameTistory,
		result: &post.PublishResult{Success: true, Method: "cookie"},
	}
	orch, _ := newOrchestrator(t, adapter)
	h := NewPublishHandler(orch, nil, nil)

	body, err := json.Marshal(&PublishRequest{
		Platform: platform.NameTistory,
		Post: &PostPayload{
			Title:   "Illustrated post",
			Content: "<p>body</p>",
			Images: []ImagePayload{
				{URL: "https://cdn.example.com/diagram.png", Caption: "diagram"},
			},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(string(body)))
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, adapter.got)
	require.Len(t, adapter.got.Images, 1)
	assert.Equal(t, "https://cdn.example.com/diagram.png", adapter.got.Images[0].URL)
	assert.Equal(t, "diagram", adapter.got.Images[0].Caption)
}

func TestPublishHandlerValidationError(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubAdapter{name: platform.NameTistory})
	h := NewPublishHandler(orch, nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish",
		strings.NewReader(`{"platform":"tistory","post":{"content":"no title"}}`))
	h.Handle(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VAL003", resp.Code)
}

func TestPublishHandlerUnknownPlatform(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubAdapter{name: platform.NameTistory})
	h := NewPublishHandler(orch, nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(publishBody("wordpress", "A post")))
	h.Handle(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PLT001", resp.Code)
}

func TestPublishHandlerDuplicateConflict(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubAdapter{
		name:   platform.NameTistory,
		result: &post.PublishResult{Success: true, PostURL: "https://blog.example/1"},
	})
	h := NewPublishHandler(orch, nil, nil)

	first := httptest.NewRecorder()
	h.Handle(first, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(publishBody(platform.NameTistory, "Same title"))))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.Handle(second, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(publishBody(platform.NameTistory, "Same title"))))

	require.Equal(t, http.StatusConflict, second.Code)
	var resp PublishResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.True(t, resp.IsDuplicate)
	assert.False(t, resp.Success)
}

func TestPublishHandlerInvalidJSON(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubAdapter{name: platform.NameTistory})
	h := NewPublishHandler(orch, nil, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader("{not json")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishHandlerMethodNotAllowed(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubAdapter{name: platform.NameTistory})
	h := NewPublishHandler(orch, nil, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/publish", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPublishHandlerSchedulesFuturePost(t *testing.T) {
	orch, ledger := newOrchestrator(t, &stubAdapter{name: platform.NameTistory})
	q := queue.NewMemoryQueue(0)
	h := NewPublishHandler(orch, q, nil)

	scheduled := time.Now().Add(2 * time.Hour).UTC()
	body, _ := json.Marshal(&PublishRequest{
		Platform: platform.NameTistory,
		Post:     &PostPayload{Title: "Later", Content: "x", ScheduledAt: &scheduled},
	})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(string(body))))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp ScheduledResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Scheduled)
	assert.NotEmpty(t, resp.JobID)

	size, err := q.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	records, err := ledger.List(history.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records, "a scheduled publish must not touch the ledger yet")
}

func TestHistoryHandlerListAndStats(t *testing.T) {
	ledger, err := history.NewFileStore(t.TempDir()+"/ledger.json", 0)
	require.NoError(t, err)
	_, err = ledger.Append(history.Entry{Platform: platform.NameTistory, Title: "a", Status: history.StatusSuccess})
	require.NoError(t, err)
	_, err = ledger.Append(history.Entry{Platform: platform.NameNaver, Title: "b", Status: history.StatusFailed, Error: "boom"})
	require.NoError(t, err)

	h := NewHistoryHandler(ledger, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/history?platform=tistory", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Records []*history.Record `json:"records"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Equal(t, 1, listResp.Count)
	assert.Equal(t, platform.NameTistory, listResp.Records[0].Platform)

	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/history?action=stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats history.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.TotalFailed)
}

func TestHistoryHandlerBadLimit(t *testing.T) {
	ledger, err := history.NewFileStore(t.TempDir()+"/ledger.json", 0)
	require.NoError(t, err)
	h := NewHistoryHandler(ledger, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/history?limit=nope", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandlerClear(t *testing.T) {
	ledger, err := history.NewFileStore(t.TempDir()+"/ledger.json", 0)
	require.NoError(t, err)
	_, err = ledger.Append(history.Entry{Platform: platform.NameTistory, Title: "a", Status: history.StatusSuccess})
	require.NoError(t, err)

	h := NewHistoryHandler(ledger, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodDelete, "/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := ledger.List(history.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHealthHandler(t *testing.T) {
	ledger, err := history.NewFileStore(t.TempDir()+"/ledger.json", 0)
	require.NoError(t, err)
	registry := platform.NewRegistry()
	require.NoError(t, registry.Register(&stubAdapter{name: platform.NameTistory}))

	h := NewHealthHandler(registry, ledger, "test")

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{platform.NameTistory}, resp.Platforms)
}
