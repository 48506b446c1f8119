package handlers

import (
	"net/http"
	"strconv"
	"time"

	"clinic-assistant/internal/vectorindex"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	index vectorindex.Index
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(index vectorindex.Index) *HealthHandler {
	return &HealthHandler{index: index}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// ServeHTTP handles GET requests for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.index.Stats(r.Context())

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks: map[string]string{
			"index":     "ok",
			"documents": strconv.Itoa(stats.DocumentCount),
		},
	})
}
