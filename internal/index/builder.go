// Package index derives inverted-index contributions from corpus sentences.
//
// The same derivation runs for both paths that feed the index: bulk global
// ingestion and single-sentence personal appends. Incremental building is
// not an approximation of batch building; it is this function applied to one
// sentence at a time.
package index

import (
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// SentenceEntry is the contribution of one sentence to one base word's
// index entry: the base word plus the literal surface variants observed for
// it in the sentence. A sentence contributes each base word exactly once no
// matter how many times it occurs; this keeps overlap ranking from double
// counting.
type SentenceEntry struct {
	BaseWord string
	Variants []string
}

// SentenceEntries tokenizes the sentence and returns its distinct base
// words in first-seen order. Tokens that strip to pure punctuation are
// skipped entirely. Variants are deduplicated per base word, preserving
// first-seen order.
func SentenceEntries(text string) []SentenceEntry {
	tokens := domain.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var entries []SentenceEntry
	byBase := make(map[string]int, len(tokens))

	for _, token := range tokens {
		variant := domain.StripPunctuation(token)
		if variant == "" {
			continue
		}
		base := domain.NormalizeWord(variant)
		if base == "" {
			continue
		}

		i, ok := byBase[base]
		if !ok {
			byBase[base] = len(entries)
			entries = append(entries, SentenceEntry{
				BaseWord: base,
				Variants: []string{variant},
			})
			continue
		}

		if !contains(entries[i].Variants, variant) {
			entries[i].Variants = append(entries[i].Variants, variant)
		}
	}

	return entries
}

// BaseWords returns the distinct base words of the sentence in first-seen
// order, without variant bookkeeping.
func BaseWords(text string) []string {
	entries := SentenceEntries(text)
	if len(entries) == 0 {
		return nil
	}
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.BaseWord
	}
	return words
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
