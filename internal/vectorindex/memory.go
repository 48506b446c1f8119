package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"clinic-assistant/internal/contextutil"
)

// MemoryIndex is the in-memory Index implementation. A single RWMutex
// serializes all mutations; embedding happens outside the lock and a
// document only becomes visible once every chunk is in place.
type MemoryIndex struct {
	chunker   Chunker
	embedder  Embedder
	maxTokens int
	dim       int

	mu       sync.RWMutex
	docs     map[string]*Document
	docOrder []string
	chunks   []Chunk // flat collection, insertion ordered
}

// NewMemoryIndex creates an empty in-memory vector index. maxTokens bounds
// chunk size during ingestion; dim is the embedding dimensionality used for
// zero-vector fallbacks.
func NewMemoryIndex(chunker Chunker, embedder Embedder, maxTokens, dim int) *MemoryIndex {
	return &MemoryIndex{
		chunker:   chunker,
		embedder:  embedder,
		maxTokens: maxTokens,
		dim:       dim,
		docs:      make(map[string]*Document),
	}
}

// AddDocument chunks and embeds content, then publishes the document
// atomically. A per-chunk embedding failure is logged and degraded to a
// zero vector so the rest of the batch still gets indexed; re-adding an
// existing document ID replaces it wholesale.
func (idx *MemoryIndex) AddDocument(ctx context.Context, id, title, content, source string) (*Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	pieces := idx.chunker.Split(content, idx.maxTokens)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("document %q has no indexable content", id)
	}
	logger.InfoContext(ctx, "chunked document", "document_id", id, "title", title, "chunks", len(pieces))

	chunks := make([]Chunk, 0, len(pieces))
	degraded := 0
	for i, piece := range pieces {
		embedding, err := idx.embed(ctx, piece)
		if err != nil {
			logger.WarnContext(ctx, "embedding failed, storing zero vector",
				"document_id", id, "chunk_index", i, "error", err)
			degraded++
		}

		chunks = append(chunks, Chunk{
			ID:           fmt.Sprintf("%s_chunk_%d", id, i),
			DocumentID:   id,
			DocumentName: title,
			Content:      piece,
			Embedding:    embedding,
			Metadata: ChunkMetadata{
				PageNumber: i/3 + 1,
				Source:     source,
			},
		})
	}

	doc := &Document{
		ID:        id,
		Title:     title,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Chunks:    chunks,
	}

	idx.mu.Lock()
	if _, exists := idx.docs[id]; exists {
		idx.dropChunksLocked(id)
	} else {
		idx.docOrder = append(idx.docOrder, id)
	}
	idx.docs[id] = doc
	idx.chunks = append(idx.chunks, chunks...)
	idx.mu.Unlock()

	logger.InfoContext(ctx, "document indexed",
		"document_id", id, "title", title, "chunks", len(chunks), "degraded_chunks", degraded)
	return doc, nil
}

// embed returns the embedding for text, or a zero vector of the configured
// dimensionality when the provider call fails.
func (idx *MemoryIndex) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := idx.embedder.EmbedTexts(ctx, []string{text})
	if err == nil && len(vectors) == 1 {
		return vectors[0], nil
	}
	if err == nil {
		err = fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return make([]float32, idx.dim), err
}

// RemoveDocument removes the document and all its chunks in one critical
// section, so readers never see a half-removed document.
func (idx *MemoryIndex) RemoveDocument(ctx context.Context, id string) (bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.docs[id]; !ok {
		return false, nil
	}

	idx.dropChunksLocked(id)
	delete(idx.docs, id)
	for i, docID := range idx.docOrder {
		if docID == id {
			idx.docOrder = append(idx.docOrder[:i], idx.docOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

// dropChunksLocked removes id's chunks from the flat collection.
// Callers must hold the write lock.
func (idx *MemoryIndex) dropChunksLocked(id string) {
	kept := idx.chunks[:0]
	for _, c := range idx.chunks {
		if c.DocumentID != id {
			kept = append(kept, c)
		}
	}
	idx.chunks = kept
}

// GetDocument returns the document with the given ID, or false.
func (idx *MemoryIndex) GetDocument(ctx context.Context, id string) (*Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	doc, ok := idx.docs[id]
	if !ok {
		return nil, false
	}
	copied := *doc
	copied.Chunks = append([]Chunk(nil), doc.Chunks...)
	return &copied, true
}

// AllDocuments lists every indexed document in insertion order.
func (idx *MemoryIndex) AllDocuments(ctx context.Context) []Document {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := make([]Document, 0, len(idx.docOrder))
	for _, id := range idx.docOrder {
		if doc, ok := idx.docs[id]; ok {
			copied := *doc
			copied.Chunks = append([]Chunk(nil), doc.Chunks...)
			result = append(result, copied)
		}
	}
	return result
}

// Search scores every embedded chunk against the query vector and returns
// the topK best, descending. The sort is stable, so ties keep insertion
// order. Results are computed against a snapshot taken at call start;
// concurrent mutations are not reflected.
func (idx *MemoryIndex) Search(ctx context.Context, query []float32, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return []ScoredChunk{}, nil
	}

	idx.mu.RLock()
	snapshot := append([]Chunk(nil), idx.chunks...)
	idx.mu.RUnlock()

	scored := make([]ScoredChunk, 0, len(snapshot))
	for _, chunk := range snapshot {
		if len(chunk.Embedding) == 0 {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk: chunk,
			Score: CosineSimilarity(query, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// Stats reports document and chunk counts.
func (idx *MemoryIndex) Stats(ctx context.Context) Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := Stats{
		DocumentCount: len(idx.docs),
		TotalChunks:   len(idx.chunks),
	}
	if stats.DocumentCount > 0 {
		stats.AverageChunksPerDocument = float64(stats.TotalChunks) / float64(stats.DocumentCount)
	}
	return stats
}
