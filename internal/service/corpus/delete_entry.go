package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// DeleteEntry removes a base word from the caller's personal index together
// with every personal sentence that referenced it. Deleting each sentence
// also drops its references from the user's other entries, pruning any left
// empty, so the whole cascade stays consistent.
func (s *Service) DeleteEntry(ctx context.Context, input DeleteEntryInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	scope := domain.UserScope(userID)

	var deletedSentences int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.entries.Lookup(txCtx, scope, input.BaseWord)
		if err != nil {
			return fmt.Errorf("lookup entry: %w", err)
		}

		for _, id := range entry.SentenceIDs {
			sentenceID, err := id.PersonalID()
			if err != nil {
				// A foreign-space id in a personal entry means index
				// corruption; skip rather than abort the cascade.
				s.log.WarnContext(txCtx, "personal entry references non-personal sentence",
					slog.String("base_word", input.BaseWord),
					slog.String("sentence_id", string(id)))
				continue
			}

			if err := s.sentences.DeletePersonal(txCtx, userID, sentenceID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return fmt.Errorf("delete sentence %s: %w", sentenceID, err)
			}
			deletedSentences++

			if _, err := s.entries.RemoveSentenceRef(txCtx, scope, id); err != nil {
				return fmt.Errorf("remove references to %s: %w", sentenceID, err)
			}
		}

		// Removing the last reference usually prunes the entry itself; the
		// explicit delete covers an entry that somehow had no references.
		if err := s.entries.Delete(txCtx, scope, input.BaseWord); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "index entry deleted",
		slog.String("user_id", userID.String()),
		slog.String("base_word", input.BaseWord),
		slog.Int("deleted_sentences", deletedSentences),
	)

	return nil
}
