package llm

// Message is a single message in a chat conversation, ordered oldest first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds optional parameters for chat completion requests.
type ChatParams struct {
	// Model overrides the client's default model when non-empty.
	Model string

	// MaxTokens caps the generated token count. Zero means no cap.
	MaxTokens int

	// Temperature controls output randomness. Zero uses the provider default.
	Temperature float32
}
