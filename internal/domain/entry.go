package domain

import (
	"unicode"
	"unicode/utf8"
)

// IndexEntry is the inverted-index record for one base word within one
// scope. Exactly one entry exists per (base word, scope) pair.
//
// Variants is the set of literal surface tokens (punctuation-stripped,
// original casing) ever observed for the base word in this scope; it is
// deduplicated on every write. SentenceIDs lists the sentences of the scope
// containing any variant; a sentence appears at most once regardless of how
// many times the base word occurs in it.
type IndexEntry struct {
	BaseWord    string
	Scope       Scope
	Variants    []string
	SentenceIDs []SentenceID
}

// HasVariant reports whether the literal token is an attested surface form
// of this entry's base word.
func (e *IndexEntry) HasVariant(token string) bool {
	for _, v := range e.Variants {
		if v == token {
			return true
		}
	}
	return false
}

// BucketOther groups global entries whose base word does not start with an
// ASCII letter.
const BucketOther = "other"

// EntryBucket returns the storage bucket for a base word: its first letter,
// or BucketOther for non-letter-leading base words. Bucketing is a lookup
// locality optimization of the global index and is never part of the
// logical contract.
func EntryBucket(baseWord string) string {
	r, _ := utf8.DecodeRuneInString(baseWord)
	if r == utf8.RuneError {
		return BucketOther
	}
	if !unicode.IsLetter(r) {
		return BucketOther
	}
	return string(unicode.ToLower(r))
}
