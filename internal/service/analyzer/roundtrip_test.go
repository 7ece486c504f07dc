package analyzer_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/indexentry"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/sentence"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/testhelper"
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/analyzer"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/corpus"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// newServices wires the corpus and analyzer services over real repositories
// so the write path and the analysis read path meet the same index rows.
func newServices(t *testing.T) (*corpus.Service, *analyzer.Service) {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.DiscardHandler)

	sentenceRepo := sentence.New(pool)
	entryRepo := indexentry.New(pool)

	corpusSvc := corpus.NewService(logger, sentenceRepo, entryRepo, nil,
		postgres.NewTxManager(pool), corpus.Limits{
			MaxSentenceLength:   1000,
			MaxSentencesPerUser: 100,
			ChunkSize:           1000,
			IngestBatchSize:     500,
		})
	analyzerSvc := analyzer.NewService(logger, entryRepo, sentenceRepo, analyzer.Limits{
		SuggestionLimit:         10,
		AnalysisSuggestionLimit: 5,
	})

	return corpusSvc, analyzerSvc
}

func TestAnalyzeSentence_RoundTripAfterAppend(t *testing.T) {
	t.Parallel()
	corpusSvc, analyzerSvc := newServices(t)

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	text := "Hoorraa, baga gammaddan!"

	if _, err := corpusSvc.AddSentence(ctx, corpus.AddSentenceInput{Text: text}); err != nil {
		t.Fatalf("AddSentence: %v", err)
	}

	// Re-analyzing the exact sentence must attest every token's own surface
	// form, punctuation and casing included.
	words, err := analyzerSvc.AnalyzeSentence(ctx, analyzer.AnalyzeInput{Text: text})
	if err != nil {
		t.Fatalf("AnalyzeSentence: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 analyzed words, got %d", len(words))
	}
	for _, w := range words {
		if w.Status != domain.StatusCorrect {
			t.Errorf("token %q (base %q): expected correct, got %s", w.Token, w.BaseWord, w.Status)
		}
	}
}

func TestAnalyzeSentence_OtherUserSeesNothing(t *testing.T) {
	t.Parallel()
	corpusSvc, analyzerSvc := newServices(t)

	owner := ctxutil.WithUserID(context.Background(), uuid.New())
	text := "Hoorraa baga gammaddan"

	if _, err := corpusSvc.AddSentence(owner, corpus.AddSentenceInput{Text: text}); err != nil {
		t.Fatalf("AddSentence: %v", err)
	}

	stranger := ctxutil.WithUserID(context.Background(), uuid.New())
	words, err := analyzerSvc.AnalyzeSentence(stranger, analyzer.AnalyzeInput{Text: text})
	if err != nil {
		t.Fatalf("AnalyzeSentence: %v", err)
	}
	for _, w := range words {
		if w.Status != domain.StatusUnknown {
			t.Errorf("token %q: expected unknown for another user, got %s", w.Token, w.Status)
		}
	}
}
