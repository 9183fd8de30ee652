package tokendex

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS
// ═══════════════════════════════════════════════════════════════════════════════
// Two analysis entry points live here, because the two engines in this package
// want different things from their tokens:
//
//   - Tokenize: the normalization the bucketed index uses. Whitespace split,
//     non-alphanumeric runes trimmed from word edges, lowercased. Interior
//     punctuation survives ("o'clock" stays one token). Duplicates survive too;
//     callers that need set semantics dedupe with UniqueTokens.
//
//   - Analyze: the fuller pipeline the baseline engine uses — Tokenize plus
//     stopword removal, length filtering, and Snowball stemming. The bucketed
//     index deliberately does NOT stem: its bucket boundaries are raw tokens,
//     and the plan recovered from a stored schema must match what a query
//     tokenizes to, byte for byte.
// ═══════════════════════════════════════════════════════════════════════════════

// AnalyzerConfig holds the knobs for the baseline analysis pipeline.
type AnalyzerConfig struct {
	MinTokenLength  int  // drop tokens shorter than this (default: 2)
	EnableStemming  bool // Snowball (Porter2) English stemming
	EnableStopwords bool // drop common English words
}

// DefaultAnalyzerConfig returns the configuration the baseline engine indexes
// with.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Tokenize splits text into normalized tokens.
//
// Example:
//
//	Tokenize("The 'quick' brown fox!")
//	// Returns: ["the", "quick", "brown", "fox"]
func Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(word))
	}
	return tokens
}

// UniqueTokens collapses duplicates, keeping first-seen order. Traversal order
// stays deterministic this way, which keeps encoding idempotent.
func UniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		r = append(r, token)
	}
	return r
}

// Analyze transforms raw text into search tokens using the default pipeline.
func Analyze(text string) []string {
	return AnalyzeWithConfig(text, DefaultAnalyzerConfig())
}

// AnalyzeWithConfig transforms text using a custom configuration.
func AnalyzeWithConfig(text string, config AnalyzerConfig) []string {
	tokens := Tokenize(text)

	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if config.EnableStopwords && isStopword(token) {
			continue
		}
		if len(token) < config.MinTokenLength {
			continue
		}
		if config.EnableStemming {
			token = snowballeng.Stem(token, false)
		}
		r = append(r, token)
	}
	return r
}

func isStopword(token string) bool {
	_, exists := englishStopwords[token]
	return exists
}

// englishStopwords is a compact list of high-frequency English words that add
// noise to the baseline index. Uses struct{} values for zero bytes per entry.
var englishStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "if": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "she": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "they": {}, "this": {}, "to": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "which": {}, "will": {}, "with": {},
	"you": {}, "your": {},
}
