// Package indexentry implements the inverted-index repository using
// PostgreSQL. Global entries live in global_index_entries (one row per base
// word, bucketed by first letter); personal entries live in
// user_index_entries keyed by (user_id, base_word).
//
// All writes merge through a single INSERT ... ON CONFLICT DO UPDATE
// statement so concurrent appends to the same (base word, scope) key
// serialize at the database instead of racing through read-modify-write in
// the client. The merge deduplicates variants and sentence references while
// preserving first-occurrence order.
package indexentry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres"
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// Repo provides index entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new index entry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Merge SQL
// ---------------------------------------------------------------------------

// mergeExpr builds the SQL expression that deduplicates old || new for one
// array column, keeping the first occurrence of each element in order. Used
// for both variants and sentence_ids.
func mergeExpr(table, col string) string {
	return fmt.Sprintf(`(
		SELECT COALESCE(array_agg(v ORDER BY ord), '{}')
		FROM (
			SELECT DISTINCT ON (v) v, ord
			FROM unnest(%[1]s.%[2]s || EXCLUDED.%[2]s) WITH ORDINALITY AS t(v, ord)
			ORDER BY v, ord
		) s
	)`, table, col)
}

var (
	upsertGlobalSQL = `
		INSERT INTO global_index_entries (base_word, bucket, variants, sentence_ids)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (base_word) DO UPDATE SET
			variants = ` + mergeExpr("global_index_entries", "variants") + `,
			sentence_ids = ` + mergeExpr("global_index_entries", "sentence_ids")

	upsertPersonalSQL = `
		INSERT INTO user_index_entries (user_id, base_word, variants, sentence_ids)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, base_word) DO UPDATE SET
			variants = ` + mergeExpr("user_index_entries", "variants") + `,
			sentence_ids = ` + mergeExpr("user_index_entries", "sentence_ids")
)

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// Lookup returns the entry for (baseWord, scope), or domain.ErrNotFound.
func (r *Repo) Lookup(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var row pgx.Row
	if scope.IsGlobal() {
		row = querier.QueryRow(ctx,
			`SELECT base_word, variants, sentence_ids
			 FROM global_index_entries WHERE base_word = $1`,
			baseWord,
		)
	} else {
		userID, _ := scope.UserID()
		row = querier.QueryRow(ctx,
			`SELECT base_word, variants, sentence_ids
			 FROM user_index_entries WHERE user_id = $1 AND base_word = $2`,
			userID, baseWord,
		)
	}

	entry, err := scanEntryRow(row, scope)
	if err != nil {
		return nil, mapError(err, "index entry", baseWord)
	}

	return entry, nil
}

// LookupMany returns the entries for the given base words within one scope.
// Base words with no entry are simply absent from the result; the order of
// the result is unspecified.
func (r *Repo) LookupMany(ctx context.Context, scope domain.Scope, baseWords []string) ([]domain.IndexEntry, error) {
	if len(baseWords) == 0 {
		return []domain.IndexEntry{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		rows pgx.Rows
		err  error
	)
	if scope.IsGlobal() {
		rows, err = querier.Query(ctx,
			`SELECT base_word, variants, sentence_ids
			 FROM global_index_entries WHERE base_word = ANY($1::text[])`,
			baseWords,
		)
	} else {
		userID, _ := scope.UserID()
		rows, err = querier.Query(ctx,
			`SELECT base_word, variants, sentence_ids
			 FROM user_index_entries WHERE user_id = $1 AND base_word = ANY($2::text[])`,
			userID, baseWords,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, scope)
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// UpsertMerge records that a sentence contains the base word, creating the
// entry on first sight and merging variants and the sentence reference into
// an existing one otherwise. The merge is atomic per key.
func (r *Repo) UpsertMerge(ctx context.Context, scope domain.Scope, baseWord string, variants []string, sentenceID domain.SentenceID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ids := []string{string(sentenceID)}

	var err error
	if scope.IsGlobal() {
		_, err = querier.Exec(ctx, upsertGlobalSQL,
			baseWord, domain.EntryBucket(baseWord), variants, ids)
	} else {
		userID, _ := scope.UserID()
		_, err = querier.Exec(ctx, upsertPersonalSQL,
			userID, baseWord, variants, ids)
	}
	if err != nil {
		return mapError(err, "index entry", baseWord)
	}

	return nil
}

// GlobalUpsert is one accumulated global entry mutation for bulk ingest.
type GlobalUpsert struct {
	BaseWord    string
	Variants    []string
	SentenceIDs []string
}

// BulkUpsertGlobal merges accumulated entries into the global index using
// pgx.Batch. Each statement is the same atomic merge as UpsertMerge.
func (r *Repo) BulkUpsertGlobal(ctx context.Context, entries []GlobalUpsert) error {
	if len(entries) == 0 {
		return nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(upsertGlobalSQL,
			e.BaseWord, domain.EntryBucket(e.BaseWord), e.Variants, e.SentenceIDs)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("bulk upsert global entries: %w", err)
		}
	}

	return nil
}

// RemoveSentenceRef removes the sentence reference from every entry of the
// scope that lists it, then prunes entries left with zero references.
// Returns the number of pruned entries. Callers run it inside the same
// transaction as the sentence deletion.
func (r *Repo) RemoveSentenceRef(ctx context.Context, scope domain.Scope, sentenceID domain.SentenceID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := string(sentenceID)

	if scope.IsGlobal() {
		_, err := querier.Exec(ctx,
			`UPDATE global_index_entries
			 SET sentence_ids = array_remove(sentence_ids, $1)
			 WHERE sentence_ids @> ARRAY[$1]`,
			id,
		)
		if err != nil {
			return 0, fmt.Errorf("remove sentence ref: %w", err)
		}

		tag, err := querier.Exec(ctx,
			`DELETE FROM global_index_entries WHERE sentence_ids = '{}'`)
		if err != nil {
			return 0, fmt.Errorf("prune empty entries: %w", err)
		}
		return int(tag.RowsAffected()), nil
	}

	userID, _ := scope.UserID()

	_, err := querier.Exec(ctx,
		`UPDATE user_index_entries
		 SET sentence_ids = array_remove(sentence_ids, $2)
		 WHERE user_id = $1 AND sentence_ids @> ARRAY[$2]`,
		userID, id,
	)
	if err != nil {
		return 0, fmt.Errorf("remove sentence ref: %w", err)
	}

	tag, err := querier.Exec(ctx,
		`DELETE FROM user_index_entries WHERE user_id = $1 AND sentence_ids = '{}'`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("prune empty entries: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// Delete removes the entry for (baseWord, scope). Returns domain.ErrNotFound
// when no such entry exists.
func (r *Repo) Delete(ctx context.Context, scope domain.Scope, baseWord string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		tag pgconn.CommandTag
		err error
	)
	if scope.IsGlobal() {
		tag, err = querier.Exec(ctx,
			`DELETE FROM global_index_entries WHERE base_word = $1`, baseWord)
	} else {
		userID, _ := scope.UserID()
		tag, err = querier.Exec(ctx,
			`DELETE FROM user_index_entries WHERE user_id = $1 AND base_word = $2`,
			userID, baseWord)
	}
	if err != nil {
		return mapError(err, "index entry", baseWord)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("index entry %s: %w", baseWord, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

func scanEntryRow(row pgx.Row, scope domain.Scope) (*domain.IndexEntry, error) {
	var (
		baseWord    string
		variants    []string
		sentenceIDs []string
	)
	if err := row.Scan(&baseWord, &variants, &sentenceIDs); err != nil {
		return nil, err
	}
	e := buildEntry(baseWord, variants, sentenceIDs, scope)
	return &e, nil
}

func scanEntries(rows pgx.Rows, scope domain.Scope) ([]domain.IndexEntry, error) {
	var entries []domain.IndexEntry
	for rows.Next() {
		var (
			baseWord    string
			variants    []string
			sentenceIDs []string
		)
		if err := rows.Scan(&baseWord, &variants, &sentenceIDs); err != nil {
			return nil, fmt.Errorf("scan index entry: %w", err)
		}
		entries = append(entries, buildEntry(baseWord, variants, sentenceIDs, scope))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan index entries: %w", err)
	}

	if entries == nil {
		entries = []domain.IndexEntry{}
	}

	return entries, nil
}

func buildEntry(baseWord string, variants, sentenceIDs []string, scope domain.Scope) domain.IndexEntry {
	ids := make([]domain.SentenceID, len(sentenceIDs))
	for i, s := range sentenceIDs {
		ids[i] = domain.SentenceID(s)
	}
	return domain.IndexEntry{
		BaseWord:    baseWord,
		Scope:       scope,
		Variants:    variants,
		SentenceIDs: ids,
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, key, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrAlreadyExists)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, key, err)
}
