package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks clinic-assistant/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService clinic-assistant/internal/service ChatService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_context_retriever.go -package=mocks clinic-assistant/internal/service ContextRetriever

import (
	"context"

	"clinic-assistant/internal/contextutil"
	"clinic-assistant/internal/knowledge"
	"clinic-assistant/internal/llm"
	"clinic-assistant/internal/prompt"
	"clinic-assistant/internal/vectorindex"
)

// Prompt composition modes. ModeKnowledge injects every active knowledge
// entry into the system prompt; ModeRetrieval injects only chunks retrieved
// for the current user message.
const (
	ModeKnowledge = "knowledge"
	ModeRetrieval = "retrieval"
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// ChatWithMessages sends a conversation to the LLM and returns the reply.
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
	// StreamChatWithMessages sends a conversation to the LLM and streams the
	// reply via callback.
	StreamChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams, callback func(chunk string) error) error
}

// ContextRetriever finds chunks relevant to a query for retrieval-mode
// prompt composition.
type ContextRetriever interface {
	Search(ctx context.Context, query string, topK int) ([]vectorindex.ScoredChunk, error)
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string `validate:"required"`
	// History carries prior conversation turns, oldest first. The system
	// prompt is always rebuilt server-side; any system message in History
	// is ignored.
	History []llm.Message
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply string
}

// ChatService provides chat functionality.
type ChatService interface {
	// ProcessChat processes a chat request and returns a response.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat processes a chat request and streams the response via callback.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error
}

// chatService implements ChatService.
type chatService struct {
	llmClient LLMClient
	prompts   prompt.Store
	entries   knowledge.Store
	retriever ContextRetriever
	mode      string
	topK      int
	params    llm.ChatParams
}

// NewChatService creates a new ChatService. The retriever may be nil when
// mode is ModeKnowledge.
func NewChatService(llmClient LLMClient, prompts prompt.Store, entries knowledge.Store, ret ContextRetriever, mode string, topK int, params llm.ChatParams) ChatService {
	if mode != ModeRetrieval {
		mode = ModeKnowledge
	}
	return &chatService{
		llmClient: llmClient,
		prompts:   prompts,
		entries:   entries,
		retriever: ret,
		mode:      mode,
		topK:      topK,
		params:    params,
	}
}

// ProcessChat processes a chat request.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	// Business validation
	if req.Message == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return ChatResponse{}, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	messages := s.buildMessages(ctx, req)

	reply, err := s.llmClient.ChatWithMessages(ctx, messages, s.params)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return ChatResponse{}, WrapError(err, "failed to get LLM response")
	}

	logger.InfoContext(ctx, "chat request processed successfully", "message_length", len(req.Message), "reply_length", len(reply))
	return ChatResponse{
		Reply: reply,
	}, nil
}

// StreamChat processes a chat request and streams the response.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	// Business validation
	if req.Message == "" {
		logger.WarnContext(ctx, "empty message in streaming chat request")
		return &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	messages := s.buildMessages(ctx, req)

	if err := s.llmClient.StreamChatWithMessages(ctx, messages, s.params, callback); err != nil {
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return WrapError(err, "failed to stream LLM response")
	}

	logger.InfoContext(ctx, "streaming chat request processed successfully", "message_length", len(req.Message))
	return nil
}

// buildMessages assembles the full conversation: composed system prompt,
// prior history (system turns dropped), then the current user message.
func (s *chatService) buildMessages(ctx context.Context, req ChatRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.History)+2)
	messages = append(messages, llm.Message{Role: "system", Content: s.systemPrompt(ctx, req.Message)})
	for _, m := range req.History {
		if m.Role == "system" {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})
	return messages
}

// systemPrompt composes the system prompt for this request. Failures to
// load knowledge or retrieve context degrade to the base persona prompt
// rather than failing the chat.
func (s *chatService) systemPrompt(ctx context.Context, userMessage string) string {
	logger := contextutil.LoggerFromContext(ctx)

	base := prompt.DefaultActive().Content
	if s.prompts != nil {
		active, err := s.prompts.Active(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to load active prompt, using default", "error", err)
		} else {
			base = active.Content
		}
	}

	if s.mode == ModeRetrieval && s.retriever != nil {
		chunks, err := s.retriever.Search(ctx, userMessage, s.topK)
		if err != nil {
			logger.WarnContext(ctx, "retrieval failed, answering without document context", "error", err)
			return base
		}
		return prompt.ComposeWithContext(base, chunks)
	}

	if s.entries == nil {
		return base
	}
	active := true
	entries, err := s.entries.List(ctx, knowledge.Filter{Active: &active})
	if err != nil {
		logger.WarnContext(ctx, "failed to load knowledge entries, answering without them", "error", err)
		return base
	}
	return prompt.Compose(base, entries)
}
