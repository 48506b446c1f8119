package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/ingest"
)

// DocumentsHandler handles HTTP requests for batch document sync and
// removal.
type DocumentsHandler struct {
	ingester *ingest.Service
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(ingester *ingest.Service) *DocumentsHandler {
	return &DocumentsHandler{ingester: ingester}
}

// SyncRequest represents the HTTP request payload for a sync batch.
type SyncRequest struct {
	Documents []ingest.Document `json:"documents"`
}

// Sync handles POST requests ingesting a batch of documents. Per-document
// failures do not abort the batch; the response reports partial success.
func (h *DocumentsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "Documents are required")
		return
	}

	result := h.ingester.SyncBatch(ctx, req.Documents)
	logger.InfoContext(ctx, "document sync completed", "synced", result.Synced, "failed", result.Failed)

	status := http.StatusOK
	if result.Synced == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

// Delete handles DELETE requests removing a document from the index.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	removed, err := h.ingester.RemoveDocument(ctx, id)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to remove document")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
