// Package ingest feeds documents from uploads and external sync batches
// into the vector index, recording matching knowledge entries for uploads.
package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/knowledge"
	"clinic-assistant/internal/vectorindex"
)

// MinContentLength is the minimum cleaned-text length accepted for
// ingestion. Shorter content embeds poorly and is almost always an
// extraction failure.
const MinContentLength = 50

// ErrContentTooShort is returned when cleaned content is below
// MinContentLength runes.
type ErrContentTooShort struct {
	Length int
}

func (e *ErrContentTooShort) Error() string {
	return fmt.Sprintf("content too short after cleanup (%d chars, need at least %d)", e.Length, MinContentLength)
}

// Document is one unit of content to ingest.
type Document struct {
	// ID is optional; a UUID is assigned when empty.
	ID string `json:"id,omitempty"`
	// Title names the document in citations and summaries.
	Title string `json:"title"`
	// Content is raw extracted text; it is cleaned before indexing.
	Content string `json:"content"`
	// Source is one of the vectorindex source labels. Defaults to manual.
	Source string `json:"source,omitempty"`
	// FileName and OriginFileID cross-reference the uploaded file on the
	// knowledge entry created for uploads.
	FileName     string `json:"file_name,omitempty"`
	OriginFileID string `json:"origin_file_id,omitempty"`
}

// BatchResult reports the outcome of a sync batch. Failures do not abort
// the batch.
type BatchResult struct {
	Synced int          `json:"synced"`
	Failed int          `json:"failed"`
	Errors []BatchError `json:"errors,omitempty"`
}

// BatchError ties a failure to the document that caused it.
type BatchError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// Service coordinates vector indexing with knowledge-entry bookkeeping.
type Service struct {
	index vectorindex.Index
	store knowledge.Store
}

// New creates an ingest service. The knowledge store may be nil when no
// entry bookkeeping is wanted.
func New(index vectorindex.Index, store knowledge.Store) *Service {
	return &Service{index: index, store: store}
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// CleanText normalizes line endings and collapses runs of blank lines so
// chunk boundaries do not land on formatting noise.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// IngestDocument cleans, validates and indexes a single document. When the
// document carries a FileName, a knowledge entry is recorded alongside so
// the upload shows up in the knowledge admin view.
func (s *Service) IngestDocument(ctx context.Context, doc Document) (*vectorindex.Document, error) {
	content := CleanText(doc.Content)
	if n := utf8.RuneCountInString(content); n < MinContentLength {
		return nil, &ErrContentTooShort{Length: n}
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Source == "" {
		doc.Source = vectorindex.SourceManual
	}
	if doc.Title == "" {
		doc.Title = doc.FileName
	}

	indexed, err := s.index.AddDocument(ctx, doc.ID, doc.Title, content, doc.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to index document %q: %w", doc.Title, err)
	}

	if s.store != nil && doc.FileName != "" {
		entry := knowledge.Entry{
			Category:     "documents",
			Title:        doc.Title,
			Content:      summarize(content),
			Tags:         []string{"uploaded"},
			IsActive:     true,
			Source:       knowledge.SourceUpload,
			FileName:     doc.FileName,
			OriginFileID: doc.ID,
		}
		if _, err := s.store.Add(ctx, entry); err != nil {
			// The document is already searchable; losing the admin-view
			// entry is not worth failing the upload over.
			contextutil.LoggerFromContext(ctx).Warn("failed to record knowledge entry for upload",
				"document_id", doc.ID, "error", err)
		}
	}

	return indexed, nil
}

// SyncBatch ingests a batch of documents, continuing past per-document
// failures and reporting partial success.
func (s *Service) SyncBatch(ctx context.Context, docs []Document) BatchResult {
	var result BatchResult
	for _, doc := range docs {
		if _, err := s.IngestDocument(ctx, doc); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchError{Title: doc.Title, Error: err.Error()})
			contextutil.LoggerFromContext(ctx).Warn("document sync failed",
				"title", doc.Title, "error", err)
			continue
		}
		result.Synced++
	}
	return result
}

// RemoveDocument deletes a document from the index and any knowledge entry
// that references it.
func (s *Service) RemoveDocument(ctx context.Context, id string) (bool, error) {
	removed, err := s.index.RemoveDocument(ctx, id)
	if err != nil {
		return false, err
	}

	if s.store != nil && removed {
		entries, err := s.store.List(ctx, knowledge.Filter{})
		if err != nil {
			return removed, nil
		}
		for _, entry := range entries {
			if entry.OriginFileID == id {
				_ = s.store.Delete(ctx, entry.ID)
			}
		}
	}

	return removed, nil
}

// summarize trims content for storage in a knowledge entry. The full text
// lives in the vector index; the entry only needs enough for the admin view.
func summarize(content string) string {
	const max = 500
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
