package analyzer

import (
	"context"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// AnalyzeSentence classifies every word of the text against the merged
// global and personal index. A word is correct when its literal
// punctuation-stripped form is attested for its base word in either scope,
// a variant when the base word is known but this spelling is not, and
// unknown otherwise. Tokens that strip to nothing are dropped; the
// surviving words keep their original token positions.
func (s *Service) AnalyzeSentence(ctx context.Context, input AnalyzeInput) ([]domain.WordAnalysis, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	type tokenInfo struct {
		token    string
		stripped string
		base     string
		position int
	}

	tokens := domain.Tokenize(input.Text)
	infos := make([]tokenInfo, 0, len(tokens))
	var baseWords []string
	seen := make(map[string]struct{})

	for pos, token := range tokens {
		base := domain.NormalizeWord(token)
		if base == "" {
			continue
		}
		infos = append(infos, tokenInfo{
			token:    token,
			stripped: domain.StripPunctuation(token),
			base:     base,
			position: pos,
		})
		if _, ok := seen[base]; !ok {
			seen[base] = struct{}{}
			baseWords = append(baseWords, base)
		}
	}
	if len(infos) == 0 {
		return []domain.WordAnalysis{}, nil
	}

	global := s.lookupScope(ctx, domain.GlobalScope(), baseWords)
	personal := s.lookupScope(ctx, domain.UserScope(userID), baseWords)

	result := make([]domain.WordAnalysis, 0, len(infos))
	for _, info := range infos {
		analysis := domain.WordAnalysis{
			Token:    info.token,
			BaseWord: info.base,
			Position: info.position,
		}

		globalEntry := global[info.base]
		personalEntry := personal[info.base]

		switch {
		case globalEntry == nil && personalEntry == nil:
			analysis.Status = domain.StatusUnknown

		case attested(info.stripped, globalEntry, personalEntry):
			analysis.Status = domain.StatusCorrect

		default:
			analysis.Status = domain.StatusVariant
			analysis.Suggestions = mergeVariants(globalEntry, personalEntry, s.limits.AnalysisSuggestionLimit)
		}

		result = append(result, analysis)
	}

	return result, nil
}

func attested(stripped string, entries ...*domain.IndexEntry) bool {
	for _, e := range entries {
		if e != nil && e.HasVariant(stripped) {
			return true
		}
	}
	return false
}

// mergeVariants combines the attested spellings of both scopes, global
// first, deduplicated, capped at limit.
func mergeVariants(global, personal *domain.IndexEntry, limit int) []string {
	var merged []string
	seen := make(map[string]struct{})

	for _, e := range []*domain.IndexEntry{global, personal} {
		if e == nil {
			continue
		}
		for _, v := range e.Variants {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
			if len(merged) == limit {
				return merged
			}
		}
	}

	return merged
}
