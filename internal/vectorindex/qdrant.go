package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"clinic-assistant/internal/contextutil"
)

// QdrantIndex implements Index with vectors stored in a Qdrant collection.
// Document bookkeeping (titles, chunk order, stats) stays in process so the
// Index contract holds identically to MemoryIndex; only similarity search
// and vector storage are delegated.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dim        int

	chunker   Chunker
	embedder  Embedder
	maxTokens int

	mu       sync.RWMutex
	docs     map[string]*Document
	docOrder []string
}

// NewQdrantIndex creates a Qdrant-backed vector index.
// urlStr is the Qdrant HTTP URL ("http://host:6333"); the gRPC port is
// derived as HTTP port + 1.
func NewQdrantIndex(urlStr, collection string, dim int, chunker Chunker, embedder Embedder, maxTokens int) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{
		client:     client,
		collection: collection,
		dim:        dim,
		chunker:    chunker,
		embedder:   embedder,
		maxTokens:  maxTokens,
		docs:       make(map[string]*Document),
	}, nil
}

// EnsureCollection creates the collection if absent and validates its vector
// size otherwise. Called once at startup.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", q.collection, "vector_size", q.dim)
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(q.dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != q.dim {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", q.dim, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", q.collection, "vector_size", q.dim)
	return nil
}

// AddDocument chunks and embeds content, upserts the vectors into Qdrant,
// and records the document in the local registry. The registry entry is
// written only after the upsert succeeds, so a reader never sees a document
// whose vectors are missing.
func (q *QdrantIndex) AddDocument(ctx context.Context, id, title, content, source string) (*Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	pieces := q.chunker.Split(content, q.maxTokens)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("document %q has no indexable content", id)
	}

	chunks := make([]Chunk, 0, len(pieces))
	points := make([]*qdrant.PointStruct, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := q.embedChunk(ctx, piece)
		if err != nil {
			logger.WarnContext(ctx, "embedding failed, storing zero vector",
				"document_id", id, "chunk_index", i, "error", err)
		}

		chunk := Chunk{
			ID:           fmt.Sprintf("%s_chunk_%d", id, i),
			DocumentID:   id,
			DocumentName: title,
			Content:      piece,
			Embedding:    embedding,
			Metadata: ChunkMetadata{
				PageNumber: i/3 + 1,
				Source:     source,
			},
		}
		chunks = append(chunks, chunk)

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(chunk.ID)),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":      chunk.ID,
				"document_id":   id,
				"document_name": title,
				"content":       piece,
				"page_number":   chunk.Metadata.PageNumber,
				"source":        source,
			}),
		})
	}

	if _, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	}); err != nil {
		return nil, fmt.Errorf("failed to upsert points: %w", err)
	}

	doc := &Document{
		ID:        id,
		Title:     title,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Chunks:    chunks,
	}

	q.mu.Lock()
	if old, exists := q.docs[id]; exists {
		// Stale points beyond the new chunk count must go; overlapping IDs
		// were already overwritten by the upsert.
		if len(old.Chunks) > len(chunks) {
			stale := old.Chunks[len(chunks):]
			ids := make([]string, 0, len(stale))
			for _, c := range stale {
				ids = append(ids, c.ID)
			}
			go func() {
				if err := q.deletePoints(context.WithoutCancel(ctx), ids); err != nil {
					logger.Warn("failed to delete stale points", "document_id", id, "error", err)
				}
			}()
		}
	} else {
		q.docOrder = append(q.docOrder, id)
	}
	q.docs[id] = doc
	q.mu.Unlock()

	logger.InfoContext(ctx, "document indexed", "document_id", id, "title", title, "chunks", len(chunks))
	return doc, nil
}

func (q *QdrantIndex) embedChunk(ctx context.Context, text string) ([]float32, error) {
	vectors, err := q.embedder.EmbedTexts(ctx, []string{text})
	if err == nil && len(vectors) == 1 {
		return vectors[0], nil
	}
	if err == nil {
		err = fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return make([]float32, q.dim), err
}

// RemoveDocument deletes the document's points from Qdrant and drops it from
// the registry.
func (q *QdrantIndex) RemoveDocument(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	doc, ok := q.docs[id]
	if !ok {
		q.mu.Unlock()
		return false, nil
	}
	delete(q.docs, id)
	for i, docID := range q.docOrder {
		if docID == id {
			q.docOrder = append(q.docOrder[:i], q.docOrder[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	ids := make([]string, 0, len(doc.Chunks))
	for _, c := range doc.Chunks {
		ids = append(ids, c.ID)
	}
	if err := q.deletePoints(ctx, ids); err != nil {
		return true, err
	}
	return true, nil
}

func (q *QdrantIndex) deletePoints(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(pointID(id)))
	}

	if _, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelector(qdrantIDs...),
	}); err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

// GetDocument returns the document with the given ID, or false.
func (q *QdrantIndex) GetDocument(ctx context.Context, id string) (*Document, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	doc, ok := q.docs[id]
	if !ok {
		return nil, false
	}
	copied := *doc
	copied.Chunks = append([]Chunk(nil), doc.Chunks...)
	return &copied, true
}

// AllDocuments lists every indexed document in insertion order.
func (q *QdrantIndex) AllDocuments(ctx context.Context) []Document {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]Document, 0, len(q.docOrder))
	for _, id := range q.docOrder {
		if doc, ok := q.docs[id]; ok {
			copied := *doc
			copied.Chunks = append([]Chunk(nil), doc.Chunks...)
			result = append(result, copied)
		}
	}
	return result
}

// Search delegates similarity ranking to Qdrant and rebuilds chunks from
// point payloads. Qdrant's cosine scoring satisfies the same ranking
// contract as the linear scan.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return []ScoredChunk{}, nil
	}

	limit := uint64(topK)
	scoredPoints, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	results := make([]ScoredChunk, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		payload := point.Payload
		chunk := Chunk{
			ID:           payloadString(payload, "chunk_id"),
			DocumentID:   payloadString(payload, "document_id"),
			DocumentName: payloadString(payload, "document_name"),
			Content:      payloadString(payload, "content"),
			Metadata: ChunkMetadata{
				PageNumber: payloadInt(payload, "page_number"),
				Source:     payloadString(payload, "source"),
			},
		}
		results = append(results, ScoredChunk{Chunk: chunk, Score: point.Score})
	}
	return results, nil
}

// Stats reports document and chunk counts from the local registry.
func (q *QdrantIndex) Stats(ctx context.Context) Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := Stats{DocumentCount: len(q.docs)}
	for _, doc := range q.docs {
		stats.TotalChunks += len(doc.Chunks)
	}
	if stats.DocumentCount > 0 {
		stats.AverageChunksPerDocument = float64(stats.TotalChunks) / float64(stats.DocumentCount)
	}
	return stats
}

// pointID maps a chunk ID onto a stable UUID, since Qdrant point IDs must be
// UUIDs or integers.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok && v != nil {
		if s, ok := v.Kind.(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) int {
	if v, ok := payload[key]; ok && v != nil {
		if i, ok := v.Kind.(*qdrant.Value_IntegerValue); ok {
			return int(i.IntegerValue)
		}
	}
	return 0
}
