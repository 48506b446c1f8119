// Package vectorindex stores document chunks together with their embeddings
// and ranks them by cosine similarity against a query vector. The in-memory
// implementation is the default; a Qdrant-backed implementation satisfies
// the same contract for deployments that want vectors off-heap.
package vectorindex

import (
	"context"
	"math"
	"time"
)

// Document sources.
const (
	SourceDrive  = "drive"
	SourceManual = "manual"
	SourcePDF    = "pdf"
)

// ChunkMetadata carries denormalized retrieval context for a chunk.
type ChunkMetadata struct {
	// PageNumber approximates the page the chunk came from, assuming three
	// chunks per page.
	PageNumber int    `json:"page_number"`
	Source     string `json:"source"`
}

// Chunk is a bounded-length slice of a document's text, the unit of
// embedding and retrieval. A chunk without an embedding is excluded from
// search.
type Chunk struct {
	ID           string        `json:"id"`
	DocumentID   string        `json:"document_id"`
	DocumentName string        `json:"document_name"`
	Content      string        `json:"content"`
	Embedding    []float32     `json:"-"`
	Metadata     ChunkMetadata `json:"metadata"`
}

// Document is an indexed document and its ordered chunks. Chunk order
// encodes original text position and is never rearranged.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Chunks    []Chunk   `json:"chunks"`
}

// ScoredChunk is a chunk paired with its similarity score for a query.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// Stats summarizes index contents.
type Stats struct {
	DocumentCount            int     `json:"document_count"`
	TotalChunks              int     `json:"total_chunks"`
	AverageChunksPerDocument float64 `json:"average_chunks_per_document"`
}

// Embedder converts texts into fixed-length vectors. Defined here from the
// consumer's perspective; internal/llm provides the production client.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits document text into bounded-size pieces.
type Chunker interface {
	Split(text string, maxTokens int) []string
}

// Index is the vector index contract. Implementations must publish a
// document atomically: readers never observe a document with only some of
// its chunks present.
type Index interface {
	// AddDocument chunks and embeds content, then stores the document.
	// A failed embedding for one chunk degrades to a zero vector rather
	// than aborting the whole document.
	AddDocument(ctx context.Context, id, title, content, source string) (*Document, error)

	// RemoveDocument removes the document and all its chunks. The returned
	// bool reports whether a document existed under that ID.
	RemoveDocument(ctx context.Context, id string) (bool, error)

	// GetDocument returns the document with the given ID, or false.
	GetDocument(ctx context.Context, id string) (*Document, bool)

	// AllDocuments lists every indexed document in insertion order.
	AllDocuments(ctx context.Context) []Document

	// Search returns up to topK chunks ranked by descending similarity to
	// the query vector. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, topK int) ([]ScoredChunk, error)

	// Stats reports document and chunk counts.
	Stats(ctx context.Context) Stats
}

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1]. Mismatched lengths or a zero vector on either side score 0; the
// division is guarded so a zero vector never produces NaN.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
