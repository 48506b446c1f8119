package handlers

import (
	"io"
	"net/http"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/extract"
	"clinic-assistant/internal/ingest"
	"clinic-assistant/internal/vectorindex"
)

// maxUploadBytes bounds multipart uploads. Text documents beyond this are
// almost certainly the wrong file.
const maxUploadBytes = 10 << 20 // 10 MiB

// UploadHandler handles multipart file uploads into the knowledge base.
type UploadHandler struct {
	extractor *extract.Extractor
	ingester  *ingest.Service
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(extractor *extract.Extractor, ingester *ingest.Service) *UploadHandler {
	return &UploadHandler{extractor: extractor, ingester: ingester}
}

// UploadResponse reports the indexed document.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// ServeHTTP handles POST requests with a multipart "file" field.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form, expected a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	text, err := h.extractor.Text(header.Filename, content)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to extract text")
		return
	}

	doc, err := h.ingester.IngestDocument(ctx, ingest.Document{
		Title:    header.Filename,
		Content:  text,
		Source:   vectorindex.SourceManual,
		FileName: header.Filename,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to ingest document")
		return
	}

	logger.InfoContext(ctx, "document uploaded", "document_id", doc.ID, "chunks", len(doc.Chunks))
	writeJSON(w, http.StatusCreated, UploadResponse{
		DocumentID: doc.ID,
		Title:      doc.Title,
		ChunkCount: len(doc.Chunks),
	})
}
