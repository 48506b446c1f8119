// Package retriever turns a free-text query into ranked document chunks by
// embedding the query and scoring it against the vector index.
package retriever

import (
	"context"
	"fmt"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/vectorindex"
)

const (
	// DefaultTopK is used when the caller passes a non-positive topK.
	DefaultTopK = 5
	// MaxTopK caps caller-requested result counts.
	MaxTopK = 20
)

// Embedder converts a query into a vector. Satisfied by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever performs semantic search over a vector index.
type Retriever struct {
	embedder Embedder
	index    vectorindex.Index
}

// New creates a Retriever over the given embedder and index.
func New(embedder Embedder, index vectorindex.Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Search embeds the query and returns up to topK chunks ranked by descending
// cosine similarity. Scores of well-separated results are deterministic for
// a fixed index snapshot.
//
// A query embedding failure is fatal to the search: a zero-vector query
// against real embeddings would rank everything at 0, which is worse than an
// error. An empty index returns an empty slice, not an error.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]vectorindex.ScoredChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := r.index.Search(ctx, vectors[0], topK)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed", "error", err)
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	logger.InfoContext(ctx, "search completed", "query_length", len(query), "top_k", topK, "results", len(results))
	return results, nil
}
