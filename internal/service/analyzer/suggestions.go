package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// GetSuggestions retrieves example sentences for the query words.
//
// In single mode the first usable word's sentences are returned, global
// corpus first, deduplicated. In overlap mode every sentence containing at
// least two distinct query base words is returned, ordered by overlap count
// descending with a deterministic id tie break. Both modes cap the result
// at the configured suggestion limit and silently omit sentences that no
// longer resolve.
func (s *Service) GetSuggestions(ctx context.Context, input SuggestionsInput) (*domain.SuggestionResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	// No usable words is a neutral query, not an error.
	baseWords := normalizeQuery(input.Words)
	if len(baseWords) == 0 {
		return &domain.SuggestionResult{Kind: input.Mode, Items: []domain.Suggestion{}}, nil
	}

	scope := domain.UserScope(userID)

	switch input.Mode {
	case domain.SuggestionSingle:
		items, err := s.singleSuggestions(ctx, scope, baseWords[0])
		if err != nil {
			return nil, err
		}
		return &domain.SuggestionResult{Kind: domain.SuggestionSingle, Items: items}, nil

	case domain.SuggestionOverlap:
		items, err := s.overlapSuggestions(ctx, scope, baseWords)
		if err != nil {
			return nil, err
		}
		return &domain.SuggestionResult{Kind: domain.SuggestionOverlap, Items: items}, nil

	default:
		return nil, domain.NewValidationError("mode", "must be single or overlap")
	}
}

// normalizeQuery maps the raw query words to deduplicated base words,
// preserving first-seen order and dropping words that normalize to nothing.
func normalizeQuery(words []string) []string {
	var baseWords []string
	seen := make(map[string]struct{})
	for _, w := range words {
		base := domain.NormalizeWord(w)
		if base == "" {
			continue
		}
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		baseWords = append(baseWords, base)
	}
	return baseWords
}

// singleSuggestions resolves the sentences referencing one base word.
func (s *Service) singleSuggestions(ctx context.Context, userScope domain.Scope, baseWord string) ([]domain.Suggestion, error) {
	var items []domain.Suggestion
	seen := make(map[domain.SentenceID]struct{})

	for _, scope := range []domain.Scope{domain.GlobalScope(), userScope} {
		entry, err := s.entries.Lookup(ctx, scope, baseWord)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %q: %w", baseWord, err)
		}

		ids := make([]domain.SentenceID, 0, len(entry.SentenceIDs))
		for _, id := range entry.SentenceIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}

		sentences, err := s.sentences.GetByIDs(ctx, scope, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve sentences: %w", err)
		}

		for _, sent := range sentences {
			items = append(items, domain.Suggestion{Sentence: sent.Text})
			if len(items) == s.limits.SuggestionLimit {
				return items, nil
			}
		}
	}

	if items == nil {
		items = []domain.Suggestion{}
	}

	return items, nil
}

// rankedSentence is one overlap candidate before resolution.
type rankedSentence struct {
	id     domain.SentenceID
	count  int
	global bool
	num    int64 // numeric id, global only
}

// overlapSuggestions ranks sentences by how many distinct query base words
// reference them. Only sentences shared by at least two base words qualify.
// Ties order global sentences before personal, global by numeric id,
// personal by lexicographic id.
func (s *Service) overlapSuggestions(ctx context.Context, userScope domain.Scope, baseWords []string) ([]domain.Suggestion, error) {
	counts := make(map[domain.SentenceID]int)
	isGlobal := make(map[domain.SentenceID]bool)

	for _, scope := range []domain.Scope{domain.GlobalScope(), userScope} {
		entries, err := s.entries.LookupMany(ctx, scope, baseWords)
		if err != nil {
			return nil, fmt.Errorf("lookup entries: %w", err)
		}
		for _, entry := range entries {
			for _, id := range entry.SentenceIDs {
				counts[id]++
				if scope.IsGlobal() {
					isGlobal[id] = true
				}
			}
		}
	}

	ranked := make([]rankedSentence, 0, len(counts))
	for id, count := range counts {
		if count < 2 {
			continue
		}
		r := rankedSentence{id: id, count: count, global: isGlobal[id]}
		if r.global {
			n, err := id.GlobalID()
			if err != nil {
				continue
			}
			r.num = n
		}
		ranked = append(ranked, r)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.global != b.global {
			return a.global
		}
		if a.global {
			return a.num < b.num
		}
		return a.id < b.id
	})

	if len(ranked) > s.limits.SuggestionLimit {
		ranked = ranked[:s.limits.SuggestionLimit]
	}

	texts, err := s.resolveRanked(ctx, userScope, ranked)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Suggestion, 0, len(ranked))
	for _, r := range ranked {
		text, ok := texts[r.id]
		if !ok {
			// The sentence vanished between index read and resolution;
			// drop it rather than fail the query.
			continue
		}
		items = append(items, domain.Suggestion{Sentence: text, Overlap: r.count})
	}

	return items, nil
}

func (s *Service) resolveRanked(ctx context.Context, userScope domain.Scope, ranked []rankedSentence) (map[domain.SentenceID]string, error) {
	var globalIDs, personalIDs []domain.SentenceID
	for _, r := range ranked {
		if r.global {
			globalIDs = append(globalIDs, r.id)
		} else {
			personalIDs = append(personalIDs, r.id)
		}
	}

	texts := make(map[domain.SentenceID]string, len(ranked))

	if len(globalIDs) > 0 {
		sentences, err := s.sentences.GetByIDs(ctx, domain.GlobalScope(), globalIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve global sentences: %w", err)
		}
		for _, sent := range sentences {
			texts[sent.ID] = sent.Text
		}
	}

	if len(personalIDs) > 0 {
		sentences, err := s.sentences.GetByIDs(ctx, userScope, personalIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve personal sentences: %w", err)
		}
		for _, sent := range sentences {
			texts[sent.ID] = sent.Text
		}
	}

	return texts, nil
}
