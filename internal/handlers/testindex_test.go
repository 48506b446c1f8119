package handlers_test

import (
	"context"
	"errors"
	"time"

	"clinic-assistant/internal/vectorindex"
)

// memIndex is a minimal in-memory Index for handler tests; it skips real
// chunking and embedding.
type memIndex struct {
	docs  map[string]vectorindex.Document
	order []string
	fail  bool
}

func newMemIndex() *memIndex {
	return &memIndex{docs: make(map[string]vectorindex.Document)}
}

func (m *memIndex) AddDocument(ctx context.Context, id, title, content, source string) (*vectorindex.Document, error) {
	if m.fail {
		return nil, errors.New("index failure")
	}
	doc := vectorindex.Document{
		ID:        id,
		Title:     title,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Chunks: []vectorindex.Chunk{
			{ID: id + "_chunk_0", DocumentID: id, DocumentName: title, Content: content},
		},
	}
	if _, exists := m.docs[id]; !exists {
		m.order = append(m.order, id)
	}
	m.docs[id] = doc
	return &doc, nil
}

func (m *memIndex) RemoveDocument(ctx context.Context, id string) (bool, error) {
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	for i, docID := range m.order {
		if docID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memIndex) GetDocument(ctx context.Context, id string) (*vectorindex.Document, bool) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, false
	}
	return &doc, true
}

func (m *memIndex) AllDocuments(ctx context.Context) []vectorindex.Document {
	result := make([]vectorindex.Document, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.docs[id])
	}
	return result
}

func (m *memIndex) Search(ctx context.Context, query []float32, topK int) ([]vectorindex.ScoredChunk, error) {
	return []vectorindex.ScoredChunk{}, nil
}

func (m *memIndex) Stats(ctx context.Context) vectorindex.Stats {
	stats := vectorindex.Stats{DocumentCount: len(m.docs)}
	for _, doc := range m.docs {
		stats.TotalChunks += len(doc.Chunks)
	}
	if stats.DocumentCount > 0 {
		stats.AverageChunksPerDocument = float64(stats.TotalChunks) / float64(stats.DocumentCount)
	}
	return stats
}
