package domain

import (
	"strings"
)

// punctuation is the fixed character class stripped from tokens before any
// indexing or lookup. It is removed anywhere in the token, not just at the
// edges, so "dhufe?!" and "hin-dhufne" both reduce to bare letters.
const punctuation = ".,/#!$%^&*;:{}=-_`~()?"

// StripPunctuation removes the punctuation character class from anywhere in
// the token. The result keeps the original casing and is what gets recorded
// as a surface variant.
func StripPunctuation(token string) string {
	if token == "" {
		return ""
	}
	if !strings.ContainsAny(token, punctuation) {
		return token
	}

	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeWord derives the canonical base form of a token:
//   - strips the punctuation class
//   - converts to lowercase
//   - collapses every run of two or more identical consecutive runes to one
//
// The mapping is lossy and many-to-one: "gabbata" and "gabata" share the
// base form "gabata", which is what makes variant detection possible.
// Returns "" for empty input or for tokens that are pure punctuation; an
// empty base form is not indexable and callers skip it.
//
// NormalizeWord is pure and idempotent.
func NormalizeWord(token string) string {
	token = strings.ToLower(StripPunctuation(token))
	if token == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(token))
	var prev rune = -1
	for _, r := range token {
		if r == prev {
			continue
		}
		prev = r
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize splits sentence text on runs of whitespace, discarding empty
// tokens. Token order is preserved; positions in analysis results refer to
// indices in the returned slice.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
