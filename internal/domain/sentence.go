package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SentenceID is a scope-local sentence identifier. Global sentences use the
// decimal form of their sequential integer id; personal sentences use the
// string form of a UUID. The two identifier spaces never mix: an id is only
// meaningful together with the scope it was issued in, and must be resolved
// against that scope's store.
type SentenceID string

// GlobalSentenceID builds the id of a global sentence from its integer id.
func GlobalSentenceID(n int64) SentenceID {
	return SentenceID(strconv.FormatInt(n, 10))
}

// PersonalSentenceID builds the id of a personal sentence from its UUID.
func PersonalSentenceID(id uuid.UUID) SentenceID {
	return SentenceID(id.String())
}

// GlobalID parses the id as a global integer id.
func (id SentenceID) GlobalID() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// PersonalID parses the id as a personal UUID.
func (id SentenceID) PersonalID() (uuid.UUID, error) {
	return uuid.Parse(string(id))
}

// Sentence is one immutable unit of corpus text. Global sentences are bulk
// loaded and never mutated; personal sentences are appended one at a time and
// may be deleted by their owner, cascading to index cleanup.
type Sentence struct {
	ID        SentenceID
	Scope     Scope
	Text      string
	CreatedAt time.Time
}

// SentenceFilter defines parameters for listing a user's personal sentences.
type SentenceFilter struct {
	// Search performs ILIKE '%...%' on the sentence text. nil or empty
	// string means no text filter.
	Search *string

	// SortOrder: "ASC" or "DESC" by created_at. Default: "DESC".
	SortOrder string

	// Limit is the maximum number of sentences to return. Default: 50, max: 200.
	Limit int

	// Offset is the number of sentences to skip.
	Offset int
}
