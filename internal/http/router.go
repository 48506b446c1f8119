package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clinic-assistant/internal/extract"
	"clinic-assistant/internal/handlers"
	"clinic-assistant/internal/ingest"
	"clinic-assistant/internal/knowledge"
	"clinic-assistant/internal/prompt"
	"clinic-assistant/internal/service"
	"clinic-assistant/internal/vectorindex"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Retriever   service.ContextRetriever
	Index       vectorindex.Index
	Knowledge   knowledge.Store
	Prompts     prompt.Store
	Ingester    *ingest.Service
	Extractor   *extract.Extractor
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	knowledgeHandler := handlers.NewKnowledgeHandler(deps.Knowledge)
	uploadHandler := handlers.NewUploadHandler(deps.Extractor, deps.Ingester)
	promptsHandler := handlers.NewPromptsHandler(deps.Prompts)
	searchHandler := handlers.NewSearchHandler(deps.Retriever, deps.Index)
	documentsHandler := handlers.NewDocumentsHandler(deps.Ingester)
	healthHandler := handlers.NewHealthHandler(deps.Index)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", knowledgeHandler.List)
			r.Post("/", knowledgeHandler.Create)
			r.Get("/active", knowledgeHandler.Active)
			r.Method(http.MethodPost, "/upload", uploadHandler)
			r.Put("/{id}", knowledgeHandler.Update)
			r.Delete("/{id}", knowledgeHandler.Delete)
		})

		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", promptsHandler.List)
			r.Post("/", promptsHandler.Save)
			r.Put("/", promptsHandler.Save)
			r.Get("/active", promptsHandler.Active)
		})

		r.Route("/rag", func(r chi.Router) {
			r.Post("/search", searchHandler.Search)
			r.Get("/search", searchHandler.Overview)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/sync", documentsHandler.Sync)
			r.Delete("/{id}", documentsHandler.Delete)
		})
	})

	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
