package corpus

import (
	"context"
	"fmt"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// SentencePage is one page of a user's personal corpus.
type SentencePage struct {
	Sentences []domain.Sentence
	Total     int
}

// ListSentences returns a page of the caller's personal sentences, newest
// first unless the input asks otherwise.
func (s *Service) ListSentences(ctx context.Context, input ListSentencesInput) (*SentencePage, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	sentences, total, err := s.sentences.ListPersonal(ctx, userID, domain.SentenceFilter{
		Search:    input.Search,
		SortOrder: input.SortOrder,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}

	return &SentencePage{Sentences: sentences, Total: total}, nil
}
