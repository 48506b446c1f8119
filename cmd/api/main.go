package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"clinic-assistant/internal/chunker"
	"clinic-assistant/internal/config"
	"clinic-assistant/internal/extract"
	"clinic-assistant/internal/http"
	"clinic-assistant/internal/ingest"
	"clinic-assistant/internal/knowledge"
	"clinic-assistant/internal/llm"
	"clinic-assistant/internal/prompt"
	"clinic-assistant/internal/retriever"
	"clinic-assistant/internal/service"
	"clinic-assistant/internal/storage"
	"clinic-assistant/internal/vectorindex"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	ctx := context.Background()

	// Knowledge and prompt stores: SQLite when a DB path is configured,
	// in-memory otherwise.
	var knowledgeStore knowledge.Store
	var promptStore prompt.Store
	if cfg.DBPath != "" {
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			_ = db.Close()
		}()
		if err := storage.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		knowledgeStore = storage.NewKnowledgeRepo(db)
		promptStore = storage.NewPromptRepo(db)
		slog.Info("Database initialized", "path", cfg.DBPath)
	} else {
		knowledgeStore = knowledge.NewMemoryStore()
		promptStore = prompt.NewMemoryStore()
		slog.Info("Using in-memory knowledge and prompt stores")
	}

	// Embedding client, validated against the configured vector size
	// before anything gets indexed (fail-fast).
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize, cfg.EmbeddingTimeout)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	// Vector index backend
	splitter := chunker.New(nil)
	var index vectorindex.Index
	if cfg.VectorBackend == "qdrant" {
		qdrantIndex, err := vectorindex.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingVectorSize, splitter, embedder, cfg.ChunkMaxTokens)
		if err != nil {
			log.Fatalf("Failed to create Qdrant index: %v", err)
		}
		if err := qdrantIndex.EnsureCollection(ctx); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)
		index = qdrantIndex
	} else {
		index = vectorindex.NewMemoryIndex(splitter, embedder, cfg.ChunkMaxTokens, cfg.EmbeddingVectorSize)
		slog.Info("Using in-memory vector index")
	}

	// Retrieval and ingestion services
	ret := retriever.New(embedder, index)
	ingester := ingest.New(index, knowledgeStore)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	chatService := service.NewChatService(llmClient, promptStore, knowledgeStore, ret, cfg.PromptMode, cfg.SearchTopK, llm.ChatParams{
		Model: cfg.LLMModelName,
	})
	slog.Info("Chat service initialized", "prompt_mode", cfg.PromptMode)

	// Create router with dependencies
	deps := &http.Deps{
		ChatService: chatService,
		Retriever:   ret,
		Index:       index,
		Knowledge:   knowledgeStore,
		Prompts:     promptStore,
		Ingester:    ingester,
		Extractor:   extract.New(),
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// parseLogLevel maps a level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
