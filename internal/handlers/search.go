package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/service"
	"clinic-assistant/internal/vectorindex"
)

// SearchHandler handles HTTP requests for retrieval search and index
// inspection.
type SearchHandler struct {
	retriever service.ContextRetriever
	index     vectorindex.Index
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(ret service.ContextRetriever, index vectorindex.Index) *SearchHandler {
	return &SearchHandler{retriever: ret, index: index}
}

// SearchRequest represents the HTTP request payload for search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult is one ranked chunk in the search response.
type SearchResult struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Content      string  `json:"content"`
	Score        float32 `json:"score"`
	PageNumber   int     `json:"page_number"`
	Source       string  `json:"source"`
}

// SearchResponse represents the HTTP response payload for search.
type SearchResponse struct {
	Results []SearchResult    `json:"results"`
	Stats   vectorindex.Stats `json:"stats"`
}

// DocumentSummary describes one indexed document without its chunk content.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ChunkCount int       `json:"chunk_count"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// IndexOverview is the GET response: stats plus per-document summaries.
type IndexOverview struct {
	Stats     vectorindex.Stats `json:"stats"`
	Documents []DocumentSummary `json:"documents"`
}

// Search handles POST requests with a query, returning ranked chunks.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	chunks, err := h.retriever.Search(ctx, req.Query, req.TopK)
	if err != nil {
		handleServiceError(w, ctx, err, "Search failed")
		return
	}

	results := make([]SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, SearchResult{
			ChunkID:      c.ID,
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			Content:      c.Content,
			Score:        c.Score,
			PageNumber:   c.Metadata.PageNumber,
			Source:       c.Metadata.Source,
		})
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Results: results,
		Stats:   h.index.Stats(ctx),
	})
}

// Overview handles GET requests, returning index stats and document
// summaries.
func (h *SearchHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs := h.index.AllDocuments(ctx)
	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:         doc.ID,
			Title:      doc.Title,
			ChunkCount: len(doc.Chunks),
			Source:     doc.Source,
			CreatedAt:  doc.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, IndexOverview{
		Stats:     h.index.Stats(ctx),
		Documents: summaries,
	})
}
