package handlers

import (
	"net/http"
	"strconv"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/history"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
)

// HistoryHandler handles GET and DELETE on /history, plus the stats view
// via ?action=stats.
type HistoryHandler struct {
	store  history.Store
	logger logger.Logger
}

// NewHistoryHandler creates the history handler.
func NewHistoryHandler(store history.Store, log logger.Logger) *HistoryHandler {
	if log == nil {
		log = logger.Discard
	}
	return &HistoryHandler{store: store, logger: log}
}

// Handle routes by method.
func (h *HistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("action") == "stats" {
			h.stats(w)
			return
		}
		h.list(w, r)
	case http.MethodDelete:
		h.clear(w)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := history.Filter{
		Platform: q.Get("platform"),
		Status:   history.Status(q.Get("status")),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", string(errors.ErrInvalidRequest))
			return
		}
		filter.Limit = limit
	}

	records, err := h.store.List(filter)
	if err != nil {
		h.logger.Error("listing history failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), codeOf(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

func (h *HistoryHandler) stats(w http.ResponseWriter) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("computing history stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), codeOf(err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HistoryHandler) clear(w http.ResponseWriter) {
	if err := h.store.Clear(); err != nil {
		h.logger.Error("clearing history failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), codeOf(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
