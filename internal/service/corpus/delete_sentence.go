package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// DeleteSentence removes a personal sentence and every index reference to
// it. Entries whose last sentence reference was removed are pruned so the
// index never points at nothing.
func (s *Service) DeleteSentence(ctx context.Context, input DeleteSentenceInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	scope := domain.UserScope(userID)
	sentenceID := domain.PersonalSentenceID(input.SentenceID)

	var pruned int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sentences.DeletePersonal(txCtx, userID, input.SentenceID); err != nil {
			return fmt.Errorf("delete sentence: %w", err)
		}

		n, err := s.entries.RemoveSentenceRef(txCtx, scope, sentenceID)
		if err != nil {
			return fmt.Errorf("remove index references: %w", err)
		}
		pruned = n

		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "sentence deleted",
		slog.String("user_id", userID.String()),
		slog.String("sentence_id", string(sentenceID)),
		slog.Int("pruned_entries", pruned),
	)

	return nil
}
