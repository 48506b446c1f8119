package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/knowledge"
)

// KnowledgeHandler handles HTTP requests for knowledge entry management.
type KnowledgeHandler struct {
	store knowledge.Store
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(store knowledge.Store) *KnowledgeHandler {
	return &KnowledgeHandler{store: store}
}

// KnowledgeEntryRequest represents the HTTP payload for creating or
// updating an entry.
type KnowledgeEntryRequest struct {
	Category *string   `json:"category"`
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	IsActive *bool     `json:"is_active"`
}

// List handles GET requests, with optional category and active filters.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := knowledge.Filter{
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid active filter, expected true or false")
			return
		}
		filter.Active = &active
	}

	entries, err := h.store.List(ctx, filter)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list knowledge entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Active handles GET requests for active entries only.
func (h *KnowledgeHandler) Active(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	active := true
	entries, err := h.store.List(ctx, knowledge.Filter{Active: &active})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list knowledge entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Create handles POST requests to add an entry.
func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req KnowledgeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == nil || *req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Content == nil || *req.Content == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	entry := knowledge.Entry{
		Title:    *req.Title,
		Content:  *req.Content,
		IsActive: true,
		Source:   knowledge.SourceManual,
		Category: "general",
	}
	if req.Category != nil && *req.Category != "" {
		entry.Category = *req.Category
	}
	if req.Tags != nil {
		entry.Tags = *req.Tags
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}

	created, err := h.store.Add(ctx, entry)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create knowledge entry")
		return
	}

	logger.InfoContext(ctx, "knowledge entry created", "id", created.ID, "category", created.Category)
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT requests to partially update an entry.
func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Entry ID is required")
		return
	}

	var req KnowledgeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.store.Update(ctx, id, knowledge.Patch{
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update knowledge entry")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE requests. Deleting a missing entry succeeds.
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Entry ID is required")
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete knowledge entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
