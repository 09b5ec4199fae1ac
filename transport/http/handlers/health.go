package handlers

import (
	"net/http"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/history"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
)

// HealthHandler handles GET /health.
type HealthHandler struct {
	registry *platform.Registry
	store    history.Store
	started  time.Time
	version  string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(registry *platform.Registry, store history.Store, version string) *HealthHandler {
	return &HealthHandler{
		registry: registry,
		store:    store,
		started:  time.Now(),
		version:  version,
	}
}

// HealthResponse is the wire form of a health check.
type HealthResponse struct {
	Status        string         `json:"status"`
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Platforms     []string       `json:"platforms"`
	Metrics       *HealthMetrics `json:"metrics,omitempty"`
}

// HealthMetrics summarizes the ledger for the health view.
type HealthMetrics struct {
	TotalPublishes int     `json:"total_publishes"`
	TotalFailed    int     `json:"total_failed"`
	SuccessRate    float64 `json:"success_rate"`
}

// Handle handles the health check request.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	response := &HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Platforms:     h.registry.Names(),
	}

	status := http.StatusOK
	stats, err := h.store.Stats()
	if err != nil {
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	} else {
		metrics := &HealthMetrics{
			TotalPublishes: stats.Total,
			TotalFailed:    stats.TotalFailed,
		}
		if stats.Total > 0 {
			metrics.SuccessRate = float64(stats.Total-stats.TotalFailed) / float64(stats.Total)
		}
		response.Metrics = metrics
	}

	writeJSON(w, status, response)
}
