package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/publisher"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/queue"
)

// PublishHandler handles POST /publish.
type PublishHandler struct {
	orch   *publisher.Orchestrator
	queue  queue.Queue
	logger logger.Logger
	now    func() time.Time
}

// NewPublishHandler creates the publish handler. q may be nil when
// scheduled publishing is disabled.
func NewPublishHandler(orch *publisher.Orchestrator, q queue.Queue, log logger.Logger) *PublishHandler {
	if log == nil {
		log = logger.Discard
	}
	return &PublishHandler{orch: orch, queue: q, logger: log, now: time.Now}
}

// Handle handles the publish request.
func (h *PublishHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var wire PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), string(errors.ErrInvalidRequest))
		return
	}

	req := wire.ToRequest()

	// A future scheduled_at defers the publish through the queue.
	if h.queue != nil && req.Post != nil && req.Post.ScheduledAt != nil && req.Post.ScheduledAt.After(h.now()) {
		job := &queue.Job{Request: req, NotBefore: *req.Post.ScheduledAt}
		if err := h.queue.Enqueue(r.Context(), job); err != nil {
			h.logger.Error("scheduling publish failed", "platform", req.Platform, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error(), codeOf(err))
			return
		}
		writeJSON(w, http.StatusAccepted, &ScheduledResponse{
			Scheduled: true,
			JobID:     job.ID,
			NotBefore: job.NotBefore,
		})
		return
	}

	res, err := h.orch.Publish(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if pubErr := errors.AsPublishError(err); pubErr != nil {
			switch pubErr.Code.Category() {
			case errors.ValidationCategory:
				status = http.StatusBadRequest
			case errors.PlatformCategory:
				if pubErr.Code == errors.ErrUnsupportedPlatform {
					status = http.StatusBadRequest
				}
			}
		}
		writeError(w, status, err.Error(), codeOf(err))
		return
	}

	status := http.StatusOK
	if res.IsDuplicate {
		status = http.StatusConflict
	}
	writeJSON(w, status, FromResult(res))
}

// TestConnectionHandler handles POST /test-connection.
type TestConnectionHandler struct {
	orch   *publisher.Orchestrator
	logger logger.Logger
}

// NewTestConnectionHandler creates the connection-test handler.
func NewTestConnectionHandler(orch *publisher.Orchestrator, log logger.Logger) *TestConnectionHandler {
	if log == nil {
		log = logger.Discard
	}
	return &TestConnectionHandler{orch: orch, logger: log}
}

// Handle handles the connection-test request.
func (h *TestConnectionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var wire struct {
		Platform    string             `json:"platform"`
		Credentials *CredentialPayload `json:"credentials,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), string(errors.ErrInvalidRequest))
		return
	}

	req := (&PublishRequest{Platform: wire.Platform, Credentials: wire.Credentials}).ToRequest()
	res, err := h.orch.TestConnection(r.Context(), req.Platform, req.Credentials)
	if err != nil {
		status := http.StatusInternalServerError
		if pubErr := errors.AsPublishError(err); pubErr != nil && pubErr.Code == errors.ErrUnsupportedPlatform {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error(), codeOf(err))
		return
	}
	writeJSON(w, http.StatusOK, FromResult(res))
}

func codeOf(err error) string {
	if pubErr := errors.AsPublishError(err); pubErr != nil {
		return string(pubErr.Code)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, &ErrorResponse{Error: message, Code: code})
}
