// Package sentence implements sentence persistence for both corpus scopes
// using PostgreSQL. Global sentences live in global_sentences with integer
// ids and a chunk column; personal sentences live in user_sentences with
// UUID ids. The two id spaces never mix; every method takes or implies a
// scope and touches only that scope's table.
package sentence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres"
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// Repo provides sentence persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sentence repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// chunkSizeKey is the corpus_meta key recording the global chunk size.
const chunkSizeKey = "chunk_size"

// ---------------------------------------------------------------------------
// Global scope
// ---------------------------------------------------------------------------

// GlobalRow is one global sentence prepared for bulk insert.
type GlobalRow struct {
	ID    int64
	Chunk int
	Text  string
}

// BulkInsertGlobal inserts global sentences using pgx.Batch. Rows whose id
// already exists are skipped via ON CONFLICT DO NOTHING so re-running an
// ingest is safe. Returns the number of actually inserted rows.
func (r *Repo) BulkInsertGlobal(ctx context.Context, rows []GlobalRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO global_sentences (id, chunk, text)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO NOTHING`,
			row.ID, row.Chunk, row.Text,
		)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("bulk insert global sentences: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// MaxGlobalID returns the highest assigned global sentence id, or -1 when
// the global corpus is empty. Ingest resumes numbering from here.
func (r *Repo) MaxGlobalID(ctx context.Context) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var max int64
	err := querier.QueryRow(ctx, `SELECT COALESCE(MAX(id), -1) FROM global_sentences`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max global sentence id: %w", err)
	}

	return max, nil
}

// ChunkSize returns the chunk size recorded at first ingest, or 0 when no
// ingest has happened yet.
func (r *Repo) ChunkSize(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var raw string
	err := querier.QueryRow(ctx, `SELECT value FROM corpus_meta WHERE key = $1`, chunkSizeKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read chunk size: %w", err)
	}

	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corpus_meta chunk_size %q: %w", raw, err)
	}

	return size, nil
}

// RecordChunkSize stores the chunk size on first ingest. A later ingest with
// a different size fails with domain.ErrConflict: the id-to-chunk arithmetic
// must stay reproducible for the life of the corpus.
func (r *Repo) RecordChunkSize(ctx context.Context, size int) error {
	existing, err := r.ChunkSize(ctx)
	if err != nil {
		return err
	}
	if existing != 0 && existing != size {
		return fmt.Errorf("chunk size %d already recorded, got %d: %w", existing, size, domain.ErrConflict)
	}
	if existing == size {
		return nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	_, err = querier.Exec(ctx,
		`INSERT INTO corpus_meta (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO NOTHING`,
		chunkSizeKey, strconv.Itoa(size),
	)
	if err != nil {
		return fmt.Errorf("record chunk size: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Personal scope
// ---------------------------------------------------------------------------

// CreatePersonal appends one sentence to the user's corpus.
func (r *Repo) CreatePersonal(ctx context.Context, userID uuid.UUID, text string) (*domain.Sentence, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := querier.Exec(ctx,
		`INSERT INTO user_sentences (id, user_id, text, created_at)
		 VALUES ($1, $2, $3, $4)`,
		id, userID, text, now,
	)
	if err != nil {
		return nil, mapError(err, "sentence", id.String())
	}

	return &domain.Sentence{
		ID:        domain.PersonalSentenceID(id),
		Scope:     domain.UserScope(userID),
		Text:      text,
		CreatedAt: now,
	}, nil
}

// DeletePersonal removes a sentence owned by the user. Returns
// domain.ErrNotFound when the sentence does not exist or is not owned.
func (r *Repo) DeletePersonal(ctx context.Context, userID, sentenceID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx,
		`DELETE FROM user_sentences WHERE id = $1 AND user_id = $2`,
		sentenceID, userID,
	)
	if err != nil {
		return mapError(err, "sentence", sentenceID.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sentence %s: %w", sentenceID, domain.ErrNotFound)
	}

	return nil
}

// CountPersonal returns the number of sentences in the user's corpus.
func (r *Repo) CountPersonal(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	err := querier.QueryRow(ctx, `SELECT COUNT(*) FROM user_sentences WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count personal sentences: %w", err)
	}

	return count, nil
}

// ListPersonal returns a page of the user's sentences plus the total count,
// newest first by default. The filter drives a squirrel-built query.
func (r *Repo) ListPersonal(ctx context.Context, userID uuid.UUID, filter domain.SentenceFilter) ([]domain.Sentence, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	where := sq.And{sq.Eq{"user_id": userID}}
	if filter.Search != nil && *filter.Search != "" {
		where = append(where, sq.ILike{"text": "%" + *filter.Search + "%"})
	}

	order := "created_at DESC"
	if filter.SortOrder == "ASC" {
		order = "created_at ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	listSQL, listArgs, err := psql.
		Select("id", "user_id", "text", "created_at").
		From("user_sentences").
		Where(where).
		OrderBy(order).
		Limit(uint64(limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list personal sentences: %w", err)
	}
	defer rows.Close()

	sentences, err := scanPersonalSentences(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list personal sentences: %w", err)
	}

	countSQL, countArgs, err := psql.
		Select("COUNT(*)").
		From("user_sentences").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count personal sentences: %w", err)
	}

	return sentences, total, nil
}

// ---------------------------------------------------------------------------
// Cross-scope resolution
// ---------------------------------------------------------------------------

// GetByIDs resolves sentence ids within one scope to full sentences,
// preserving the order of the requested ids. Ids that cannot be parsed for
// the scope's id space or that no longer resolve are silently omitted.
func (r *Repo) GetByIDs(ctx context.Context, scope domain.Scope, ids []domain.SentenceID) ([]domain.Sentence, error) {
	if len(ids) == 0 {
		return []domain.Sentence{}, nil
	}

	if scope.IsGlobal() {
		return r.getGlobalByIDs(ctx, ids)
	}
	return r.getPersonalByIDs(ctx, scope, ids)
}

func (r *Repo) getGlobalByIDs(ctx context.Context, ids []domain.SentenceID) ([]domain.Sentence, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	numeric := make([]int64, 0, len(ids))
	for _, id := range ids {
		n, err := id.GlobalID()
		if err != nil {
			continue
		}
		numeric = append(numeric, n)
	}
	if len(numeric) == 0 {
		return []domain.Sentence{}, nil
	}

	rows, err := querier.Query(ctx,
		`SELECT id, text FROM global_sentences WHERE id = ANY($1::bigint[])`,
		numeric,
	)
	if err != nil {
		return nil, fmt.Errorf("get global sentences: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]string, len(numeric))
	for rows.Next() {
		var (
			id   int64
			text string
		)
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan global sentence: %w", err)
		}
		byID[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get global sentences: %w", err)
	}

	sentences := make([]domain.Sentence, 0, len(numeric))
	for _, n := range numeric {
		text, ok := byID[n]
		if !ok {
			continue
		}
		sentences = append(sentences, domain.Sentence{
			ID:    domain.GlobalSentenceID(n),
			Scope: domain.GlobalScope(),
			Text:  text,
		})
	}

	return sentences, nil
}

func (r *Repo) getPersonalByIDs(ctx context.Context, scope domain.Scope, ids []domain.SentenceID) ([]domain.Sentence, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	userID, ok := scope.UserID()
	if !ok {
		return []domain.Sentence{}, nil
	}

	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := id.PersonalID()
		if err != nil {
			continue
		}
		uuids = append(uuids, u)
	}
	if len(uuids) == 0 {
		return []domain.Sentence{}, nil
	}

	rows, err := querier.Query(ctx,
		`SELECT id, text, created_at FROM user_sentences
		 WHERE user_id = $1 AND id = ANY($2::uuid[])`,
		userID, uuids,
	)
	if err != nil {
		return nil, fmt.Errorf("get personal sentences: %w", err)
	}
	defer rows.Close()

	type row struct {
		text      string
		createdAt time.Time
	}
	byID := make(map[uuid.UUID]row, len(uuids))
	for rows.Next() {
		var (
			id        uuid.UUID
			text      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan personal sentence: %w", err)
		}
		byID[id] = row{text: text, createdAt: createdAt}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get personal sentences: %w", err)
	}

	sentences := make([]domain.Sentence, 0, len(uuids))
	for _, u := range uuids {
		rec, ok := byID[u]
		if !ok {
			continue
		}
		sentences = append(sentences, domain.Sentence{
			ID:        domain.PersonalSentenceID(u),
			Scope:     scope,
			Text:      rec.text,
			CreatedAt: rec.createdAt,
		})
	}

	return sentences, nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

func scanPersonalSentences(rows pgx.Rows) ([]domain.Sentence, error) {
	var sentences []domain.Sentence
	for rows.Next() {
		var (
			id        uuid.UUID
			userID    uuid.UUID
			text      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &userID, &text, &createdAt); err != nil {
			return nil, err
		}
		sentences = append(sentences, domain.Sentence{
			ID:        domain.PersonalSentenceID(id),
			Scope:     domain.UserScope(userID),
			Text:      text,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sentences == nil {
		sentences = []domain.Sentence{}
	}

	return sentences, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
