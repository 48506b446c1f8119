package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxTokens is the chunk size used when the caller does not specify
// one. It targets embedding models with a 8k-token context; 500 tokens per
// chunk keeps retrieval granular without fragmenting sentences.
const DefaultMaxTokens = 500

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Chunker splits document text into bounded-size pieces along sentence
// boundaries. Splitting is deterministic for identical input and maxTokens.
type Chunker struct {
	tokens TokenCounter
}

// New creates a Chunker using the given token counter. A nil counter falls
// back to the approximate rune-based counter.
func New(tokens TokenCounter) *Chunker {
	if tokens == nil {
		tokens = ApproxCounter{}
	}
	return &Chunker{tokens: tokens}
}

// Split breaks text into chunks of at most maxTokens tokens each.
//
// Sentences are accumulated into a running chunk; when the next sentence
// would push the chunk over maxTokens the chunk is flushed and the sentence
// starts a new one. A single sentence longer than maxTokens is emitted whole
// rather than truncated: content is never silently dropped. Text with no
// sentence boundaries falls back to fixed token-window slicing.
//
// Empty or whitespace-only input returns nil.
func (c *Chunker) Split(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// No terminal punctuation at all: fall back to token windows so the
	// content still gets indexed in bounded pieces.
	if !sentenceBoundary.MatchString(text) {
		return c.splitByWindow(text, maxTokens)
	}

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, sentence := range sentenceBoundary.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceTokens := c.tokens.Count(sentence)

		if currentTokens+sentenceTokens > maxTokens && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(sentence)
			currentTokens = sentenceTokens
			continue
		}

		if current.Len() > 0 {
			current.WriteString(". ")
		}
		current.WriteString(sentence)
		currentTokens += sentenceTokens
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	// Punctuation-only input leaves every sentence empty; window-split the
	// raw text rather than returning nothing for non-empty input.
	if len(chunks) == 0 {
		chunks = c.splitByWindow(text, maxTokens)
	}

	return chunks
}

// splitByWindow slices text into consecutive windows of at most maxTokens
// tokens with no overlap. Each window holds at least one rune, so progress
// is guaranteed even for pathological counters.
func (c *Chunker) splitByWindow(text string, maxTokens int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := c.windowEnd(runes, start, maxTokens)
		chunks = append(chunks, string(runes[start:end]))
		start = end
	}
	return chunks
}

// windowEnd finds the largest end index such that runes[start:end] counts at
// most maxTokens tokens, via binary search on the prefix length.
func (c *Chunker) windowEnd(runes []rune, start, maxTokens int) int {
	lo, hi := start+1, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.tokens.Count(string(runes[start:mid])) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
