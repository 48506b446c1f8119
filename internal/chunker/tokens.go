package chunker

import "unicode/utf8"

// TokenCounter estimates how many model tokens a piece of text occupies.
// Abstracting this keeps the chunker independent of any one model's
// byte-pair encoding; swap in an exact tokenizer when precision matters.
type TokenCounter interface {
	Count(text string) int
}

// RunesPerToken is the approximation used by ApproxCounter: embedding-model
// tokens average out to roughly four characters of English text.
const RunesPerToken = 4

// ApproxCounter estimates token counts from rune counts. Non-empty text
// always counts as at least one token.
type ApproxCounter struct{}

// Count returns the approximate token count for text.
func (ApproxCounter) Count(text string) int {
	runes := utf8.RuneCountInString(text)
	if runes == 0 {
		return 0
	}
	tokens := runes / RunesPerToken
	if tokens == 0 {
		return 1
	}
	return tokens
}
