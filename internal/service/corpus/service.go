// Package corpus implements the write side of the corpus: appending and
// deleting personal sentences, deleting index entries, and the offline bulk
// ingest of the shared global corpus. Every mutation keeps the sentence
// tables and the inverted index consistent inside one transaction.
package corpus

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/indexentry"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/sentence"
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

type sentenceRepo interface {
	BulkInsertGlobal(ctx context.Context, rows []sentence.GlobalRow) (int, error)
	MaxGlobalID(ctx context.Context) (int64, error)
	ChunkSize(ctx context.Context) (int, error)
	RecordChunkSize(ctx context.Context, size int) error
	CreatePersonal(ctx context.Context, userID uuid.UUID, text string) (*domain.Sentence, error)
	DeletePersonal(ctx context.Context, userID, sentenceID uuid.UUID) error
	CountPersonal(ctx context.Context, userID uuid.UUID) (int, error)
	ListPersonal(ctx context.Context, userID uuid.UUID, filter domain.SentenceFilter) ([]domain.Sentence, int, error)
}

type entryRepo interface {
	Lookup(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error)
	UpsertMerge(ctx context.Context, scope domain.Scope, baseWord string, variants []string, sentenceID domain.SentenceID) error
	BulkUpsertGlobal(ctx context.Context, entries []indexentry.GlobalUpsert) error
	RemoveSentenceRef(ctx context.Context, scope domain.Scope, sentenceID domain.SentenceID) (int, error)
	Delete(ctx context.Context, scope domain.Scope, baseWord string) error
}

type entryCache interface {
	Invalidate(ctx context.Context, baseWords ...string)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Limits holds the corpus limits and ingest parameters, taken from
// configuration.
type Limits struct {
	MaxSentenceLength   int
	MaxSentencesPerUser int
	ChunkSize           int
	IngestBatchSize     int
}

// Service provides corpus write operations.
type Service struct {
	sentences sentenceRepo
	entries   entryRepo
	cache     entryCache
	tx        txManager
	limits    Limits
	log       *slog.Logger
}

// NewService creates a new corpus service. cache may be nil when no cache is
// configured.
func NewService(
	log *slog.Logger,
	sentences sentenceRepo,
	entries entryRepo,
	cache entryCache,
	tx txManager,
	limits Limits,
) *Service {
	return &Service{
		sentences: sentences,
		entries:   entries,
		cache:     cache,
		tx:        tx,
		limits:    limits,
		log:       log.With("service", "corpus"),
	}
}
