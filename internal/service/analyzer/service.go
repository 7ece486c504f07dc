// Package analyzer implements the read side of the corpus: classifying the
// words of a sentence against the merged global and personal index, and
// retrieving example sentences for known words. It never mutates the corpus.
package analyzer

import (
	"context"
	"log/slog"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

type entrySource interface {
	Lookup(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error)
	LookupMany(ctx context.Context, scope domain.Scope, baseWords []string) ([]domain.IndexEntry, error)
}

type sentenceSource interface {
	GetByIDs(ctx context.Context, scope domain.Scope, ids []domain.SentenceID) ([]domain.Sentence, error)
}

// Limits bounds the size of analyzer responses, taken from configuration.
type Limits struct {
	// SuggestionLimit caps the sentences returned by GetSuggestions.
	SuggestionLimit int
	// AnalysisSuggestionLimit caps the alternative spellings attached to a
	// variant word during analysis.
	AnalysisSuggestionLimit int
}

// Service provides sentence analysis and suggestion queries.
type Service struct {
	entries   entrySource
	sentences sentenceSource
	limits    Limits
	log       *slog.Logger
}

// NewService creates a new analyzer service. entries is typically the cache
// decorated index repository.
func NewService(
	log *slog.Logger,
	entries entrySource,
	sentences sentenceSource,
	limits Limits,
) *Service {
	return &Service{
		entries:   entries,
		sentences: sentences,
		limits:    limits,
		log:       log.With("service", "analyzer"),
	}
}

// lookupScope fetches the entries of one scope for the given base words and
// returns them keyed by base word. A store failure is logged and an empty
// map returned: analysis degrades to treating the scope's words as absent
// rather than failing the whole request.
func (s *Service) lookupScope(ctx context.Context, scope domain.Scope, baseWords []string) map[string]*domain.IndexEntry {
	byWord := make(map[string]*domain.IndexEntry, len(baseWords))
	if len(baseWords) == 0 {
		return byWord
	}

	entries, err := s.entries.LookupMany(ctx, scope, baseWords)
	if err != nil {
		s.log.WarnContext(ctx, "index lookup failed, treating words as absent",
			slog.String("scope", scope.String()),
			slog.Int("words", len(baseWords)),
			slog.String("error", err.Error()),
		)
		return byWord
	}

	for i := range entries {
		byWord[entries[i].BaseWord] = &entries[i]
	}

	return byWord
}
