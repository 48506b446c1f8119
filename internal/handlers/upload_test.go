package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-assistant/internal/extract"
	"clinic-assistant/internal/handlers"
	"clinic-assistant/internal/ingest"
	"clinic-assistant/internal/knowledge"
)

func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadHandler_TextFile(t *testing.T) {
	index := newMemIndex()
	store := knowledge.NewMemoryStore()
	handler := handlers.NewUploadHandler(extract.New(), ingest.New(index, store))

	body, contentType := multipartFile(t, "aftercare.txt", syncContent)
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DocumentID == "" || resp.Title != "aftercare.txt" || resp.ChunkCount == 0 {
		t.Errorf("response = %+v", resp)
	}

	if _, ok := index.GetDocument(context.Background(), resp.DocumentID); !ok {
		t.Error("uploaded document missing from index")
	}

	// Uploads also register a knowledge entry referencing the document.
	entries, err := store.List(context.Background(), knowledge.Filter{Category: "documents"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d knowledge entries, want 1", len(entries))
	}
	if entries[0].Source != knowledge.SourceUpload || entries[0].OriginFileID != resp.DocumentID {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestUploadHandler_MarkdownFile(t *testing.T) {
	handler := handlers.NewUploadHandler(extract.New(), ingest.New(newMemIndex(), knowledge.NewMemoryStore()))

	markdown := "# Aftercare\n\nAvoid **sun exposure** for two weeks after treatment. Apply sunscreen daily and stay hydrated."
	body, contentType := multipartFile(t, "aftercare.md", markdown)
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadHandler_UnsupportedType(t *testing.T) {
	handler := handlers.NewUploadHandler(extract.New(), ingest.New(newMemIndex(), knowledge.NewMemoryStore()))

	body, contentType := multipartFile(t, "scan.pdf", "%PDF-1.4 binary payload")
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadHandler_ContentTooShort(t *testing.T) {
	handler := handlers.NewUploadHandler(extract.New(), ingest.New(newMemIndex(), knowledge.NewMemoryStore()))

	body, contentType := multipartFile(t, "note.txt", "too short")
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadHandler_MissingFileField(t *testing.T) {
	handler := handlers.NewUploadHandler(extract.New(), ingest.New(newMemIndex(), knowledge.NewMemoryStore()))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("name", "not a file"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
