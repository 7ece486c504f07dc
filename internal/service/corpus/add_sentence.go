package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/internal/index"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// AddSentence appends a sentence to the caller's personal corpus and merges
// its words into the personal index. The sentence insert and every index
// mutation commit together or not at all.
func (s *Service) AddSentence(ctx context.Context, input AddSentenceInput) (*domain.Sentence, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if len(text) > s.limits.MaxSentenceLength {
		return nil, domain.NewValidationError("text",
			fmt.Sprintf("max %d characters", s.limits.MaxSentenceLength))
	}

	count, err := s.sentences.CountPersonal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count personal sentences: %w", err)
	}
	if count >= s.limits.MaxSentencesPerUser {
		return nil, domain.NewValidationError("corpus",
			fmt.Sprintf("corpus is full (max %d sentences)", s.limits.MaxSentencesPerUser))
	}

	scope := domain.UserScope(userID)
	entries := index.SentenceEntries(text)

	var created *domain.Sentence
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sent, err := s.sentences.CreatePersonal(txCtx, userID, text)
		if err != nil {
			return fmt.Errorf("create sentence: %w", err)
		}

		for _, e := range entries {
			if err := s.entries.UpsertMerge(txCtx, scope, e.BaseWord, e.Variants, sent.ID); err != nil {
				return fmt.Errorf("index %q: %w", e.BaseWord, err)
			}
		}

		created = sent
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "sentence added",
		slog.String("user_id", userID.String()),
		slog.String("sentence_id", string(created.ID)),
		slog.Int("indexed_words", len(entries)),
	)

	return created, nil
}
