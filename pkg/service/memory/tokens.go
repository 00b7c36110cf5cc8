package memory

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken is the crude chars-to-token ratio. Absolute accuracy does not
// matter; every budget comparison in this package uses the same estimator on
// both sides, which is what the invariants depend on.
const charsPerToken = 4

// EstimateTokens returns an approximate token count for text. Deterministic,
// O(len), no external calls.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TruncateTokens clamps text to at most maxTokens estimated tokens, keeping
// the front and discarding the tail. The cut prefers a word boundary; when a
// single word spans the limit it falls back to a rune-safe hard cut. The
// second return value reports whether anything was removed.
func TruncateTokens(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return "", text != ""
	}
	if EstimateTokens(text) <= maxTokens {
		return text, false
	}

	budget := maxTokens * charsPerToken
	if budget > len(text) {
		budget = len(text)
	}

	// Back up to a rune boundary before probing for a space
	for budget > 0 && budget < len(text) && !utf8.RuneStart(text[budget]) {
		budget--
	}

	cut := strings.LastIndexFunc(text[:budget], func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t'
	})
	if cut <= 0 {
		cut = budget
	}

	return strings.TrimRight(text[:cut], " \n\t"), true
}
