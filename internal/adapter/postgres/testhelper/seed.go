package testhelper

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// SeedGlobalSentence inserts one global corpus sentence with the given id.
// chunk is derived the same way ingest derives it.
func SeedGlobalSentence(t *testing.T, pool *pgxpool.Pool, id int64, chunkSize int, text string) domain.Sentence {
	t.Helper()
	ctx := context.Background()

	chunk := int(id) / chunkSize
	_, err := pool.Exec(ctx,
		`INSERT INTO global_sentences (id, chunk, text) VALUES ($1, $2, $3)`,
		id, chunk, text,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGlobalSentence insert: %v", err)
	}

	return domain.Sentence{
		ID:   domain.GlobalSentenceID(id),
		Text: text,
	}
}

// SeedUserSentence inserts one personal sentence for the given user.
func SeedUserSentence(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, text string) domain.Sentence {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`INSERT INTO user_sentences (id, user_id, text, created_at) VALUES ($1, $2, $3, $4)`,
		id, userID, text, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUserSentence insert: %v", err)
	}

	return domain.Sentence{
		ID:        domain.PersonalSentenceID(id),
		Text:      text,
		CreatedAt: now,
	}
}

// SeedGlobalEntry inserts one global index entry.
func SeedGlobalEntry(t *testing.T, pool *pgxpool.Pool, baseWord string, variants, sentenceIDs []string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO global_index_entries (base_word, bucket, variants, sentence_ids)
		 VALUES ($1, $2, $3, $4)`,
		baseWord, domain.EntryBucket(baseWord), variants, sentenceIDs,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGlobalEntry insert: %v", err)
	}
}

// SeedUserEntry inserts one personal index entry.
func SeedUserEntry(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, baseWord string, variants, sentenceIDs []string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO user_index_entries (user_id, base_word, variants, sentence_ids)
		 VALUES ($1, $2, $3, $4)`,
		userID, baseWord, variants, sentenceIDs,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUserEntry insert: %v", err)
	}
}

// SetChunkSize records the corpus chunk size the way the first ingest does.
func SetChunkSize(t *testing.T, pool *pgxpool.Pool, size int) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO corpus_meta (key, value) VALUES ('chunk_size', $1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		strconv.Itoa(size),
	)
	if err != nil {
		t.Fatalf("testhelper: SetChunkSize upsert: %v", err)
	}
}
