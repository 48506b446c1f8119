package handlers

import (
	"encoding/json"
	"net/http"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/prompt"
)

// PromptsHandler handles HTTP requests for system prompt management.
type PromptsHandler struct {
	store prompt.Store
}

// NewPromptsHandler creates a new PromptsHandler.
func NewPromptsHandler(store prompt.Store) *PromptsHandler {
	return &PromptsHandler{store: store}
}

// PromptRequest represents the HTTP payload for saving a prompt.
type PromptRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Version  int    `json:"version,omitempty"`
	IsActive bool   `json:"is_active"`
}

// List handles GET requests for all saved prompts.
func (h *PromptsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	prompts, err := h.store.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list prompts")
		return
	}

	writeJSON(w, http.StatusOK, prompts)
}

// Active handles GET requests for the currently active prompt.
func (h *PromptsHandler) Active(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	active, err := h.store.Active(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load active prompt")
		return
	}

	writeJSON(w, http.StatusOK, active)
}

// Save handles POST and PUT requests to insert or update a prompt.
// Saving with is_active set deactivates every other prompt.
func (h *PromptsHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	saved, err := h.store.Save(ctx, prompt.Prompt{
		ID:       req.ID,
		Name:     req.Name,
		Content:  req.Content,
		Version:  req.Version,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to save prompt")
		return
	}

	logger.InfoContext(ctx, "prompt saved", "id", saved.ID, "active", saved.IsActive)
	writeJSON(w, http.StatusOK, saved)
}
