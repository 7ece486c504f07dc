package corpus

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/indexentry"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/sentence"
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockSentenceRepo struct {
	BulkInsertGlobalFunc func(ctx context.Context, rows []sentence.GlobalRow) (int, error)
	MaxGlobalIDFunc      func(ctx context.Context) (int64, error)
	ChunkSizeFunc        func(ctx context.Context) (int, error)
	RecordChunkSizeFunc  func(ctx context.Context, size int) error
	CreatePersonalFunc   func(ctx context.Context, userID uuid.UUID, text string) (*domain.Sentence, error)
	DeletePersonalFunc   func(ctx context.Context, userID, sentenceID uuid.UUID) error
	CountPersonalFunc    func(ctx context.Context, userID uuid.UUID) (int, error)
	ListPersonalFunc     func(ctx context.Context, userID uuid.UUID, filter domain.SentenceFilter) ([]domain.Sentence, int, error)
}

func (m *mockSentenceRepo) BulkInsertGlobal(ctx context.Context, rows []sentence.GlobalRow) (int, error) {
	return m.BulkInsertGlobalFunc(ctx, rows)
}

func (m *mockSentenceRepo) MaxGlobalID(ctx context.Context) (int64, error) {
	return m.MaxGlobalIDFunc(ctx)
}

func (m *mockSentenceRepo) ChunkSize(ctx context.Context) (int, error) {
	return m.ChunkSizeFunc(ctx)
}

func (m *mockSentenceRepo) RecordChunkSize(ctx context.Context, size int) error {
	return m.RecordChunkSizeFunc(ctx, size)
}

func (m *mockSentenceRepo) CreatePersonal(ctx context.Context, userID uuid.UUID, text string) (*domain.Sentence, error) {
	return m.CreatePersonalFunc(ctx, userID, text)
}

func (m *mockSentenceRepo) DeletePersonal(ctx context.Context, userID, sentenceID uuid.UUID) error {
	return m.DeletePersonalFunc(ctx, userID, sentenceID)
}

func (m *mockSentenceRepo) CountPersonal(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.CountPersonalFunc(ctx, userID)
}

func (m *mockSentenceRepo) ListPersonal(ctx context.Context, userID uuid.UUID, filter domain.SentenceFilter) ([]domain.Sentence, int, error) {
	return m.ListPersonalFunc(ctx, userID, filter)
}

type mockEntryRepo struct {
	LookupFunc            func(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error)
	UpsertMergeFunc       func(ctx context.Context, scope domain.Scope, baseWord string, variants []string, sentenceID domain.SentenceID) error
	BulkUpsertGlobalFunc  func(ctx context.Context, entries []indexentry.GlobalUpsert) error
	RemoveSentenceRefFunc func(ctx context.Context, scope domain.Scope, sentenceID domain.SentenceID) (int, error)
	DeleteFunc            func(ctx context.Context, scope domain.Scope, baseWord string) error
}

func (m *mockEntryRepo) Lookup(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error) {
	return m.LookupFunc(ctx, scope, baseWord)
}

func (m *mockEntryRepo) UpsertMerge(ctx context.Context, scope domain.Scope, baseWord string, variants []string, sentenceID domain.SentenceID) error {
	return m.UpsertMergeFunc(ctx, scope, baseWord, variants, sentenceID)
}

func (m *mockEntryRepo) BulkUpsertGlobal(ctx context.Context, entries []indexentry.GlobalUpsert) error {
	return m.BulkUpsertGlobalFunc(ctx, entries)
}

func (m *mockEntryRepo) RemoveSentenceRef(ctx context.Context, scope domain.Scope, sentenceID domain.SentenceID) (int, error) {
	return m.RemoveSentenceRefFunc(ctx, scope, sentenceID)
}

func (m *mockEntryRepo) Delete(ctx context.Context, scope domain.Scope, baseWord string) error {
	return m.DeleteFunc(ctx, scope, baseWord)
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
	calls       int
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testLimits() Limits {
	return Limits{
		MaxSentenceLength:   1000,
		MaxSentencesPerUser: 20000,
		ChunkSize:           1000,
		IngestBatchSize:     500,
	}
}

func newTestService(sentences *mockSentenceRepo, entries *mockEntryRepo, tx *mockTxManager) *Service {
	if tx == nil {
		tx = &mockTxManager{}
	}
	return NewService(
		slog.New(slog.DiscardHandler),
		sentences,
		entries,
		nil,
		tx,
		testLimits(),
	)
}

func authCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithUserID(context.Background(), userID)
}

// ---------------------------------------------------------------------------
// AddSentence
// ---------------------------------------------------------------------------

func TestAddSentence_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sentID := uuid.New()

	var indexed []string
	sentences := &mockSentenceRepo{
		CountPersonalFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 3, nil
		},
		CreatePersonalFunc: func(ctx context.Context, uid uuid.UUID, text string) (*domain.Sentence, error) {
			assert.Equal(t, userID, uid)
			return &domain.Sentence{
				ID:        domain.PersonalSentenceID(sentID),
				Scope:     domain.UserScope(uid),
				Text:      text,
				CreatedAt: time.Now().UTC(),
			}, nil
		},
	}
	entries := &mockEntryRepo{
		UpsertMergeFunc: func(ctx context.Context, scope domain.Scope, baseWord string, variants []string, sid domain.SentenceID) error {
			assert.False(t, scope.IsGlobal())
			assert.Equal(t, domain.PersonalSentenceID(sentID), sid)
			indexed = append(indexed, baseWord)
			return nil
		},
	}
	tx := &mockTxManager{}

	svc := newTestService(sentences, entries, tx)
	got, err := svc.AddSentence(authCtx(userID), AddSentenceInput{Text: "Hoorraa baga gammaddan"})

	require.NoError(t, err)
	assert.Equal(t, "Hoorraa baga gammaddan", got.Text)
	assert.Equal(t, []string{"hora", "baga", "gamadan"}, indexed)
	assert.Equal(t, 1, tx.calls)
}

func TestAddSentence_DuplicateWordIndexedOnce(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sentences := &mockSentenceRepo{
		CountPersonalFunc: func(ctx context.Context, uid uuid.UUID) (int, error) { return 0, nil },
		CreatePersonalFunc: func(ctx context.Context, uid uuid.UUID, text string) (*domain.Sentence, error) {
			return &domain.Sentence{ID: domain.PersonalSentenceID(uuid.New()), Text: text}, nil
		},
	}

	var upserts int
	var variants []string
	entries := &mockEntryRepo{
		UpsertMergeFunc: func(ctx context.Context, scope domain.Scope, baseWord string, vs []string, sid domain.SentenceID) error {
			upserts++
			variants = vs
			return nil
		},
	}

	svc := newTestService(sentences, entries, nil)
	_, err := svc.AddSentence(authCtx(userID), AddSentenceInput{Text: "gabbata gabata"})

	require.NoError(t, err)
	assert.Equal(t, 1, upserts, "one base word, one upsert")
	assert.Equal(t, []string{"gabbata", "gabata"}, variants)
}

func TestAddSentence_Unauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockSentenceRepo{}, &mockEntryRepo{}, nil)
	_, err := svc.AddSentence(context.Background(), AddSentenceInput{Text: "hora"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAddSentence_EmptyText(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockSentenceRepo{}, &mockEntryRepo{}, nil)
	_, err := svc.AddSentence(authCtx(uuid.New()), AddSentenceInput{Text: "   "})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAddSentence_CorpusFull(t *testing.T) {
	t.Parallel()

	sentences := &mockSentenceRepo{
		CountPersonalFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return testLimits().MaxSentencesPerUser, nil
		},
	}

	svc := newTestService(sentences, &mockEntryRepo{}, nil)
	_, err := svc.AddSentence(authCtx(uuid.New()), AddSentenceInput{Text: "hora"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAddSentence_IndexFailureRollsBack(t *testing.T) {
	t.Parallel()

	sentences := &mockSentenceRepo{
		CountPersonalFunc: func(ctx context.Context, uid uuid.UUID) (int, error) { return 0, nil },
		CreatePersonalFunc: func(ctx context.Context, uid uuid.UUID, text string) (*domain.Sentence, error) {
			return &domain.Sentence{ID: domain.PersonalSentenceID(uuid.New()), Text: text}, nil
		},
	}
	entries := &mockEntryRepo{
		UpsertMergeFunc: func(ctx context.Context, scope domain.Scope, baseWord string, vs []string, sid domain.SentenceID) error {
			return errors.New("upsert failed")
		},
	}

	svc := newTestService(sentences, entries, nil)
	_, err := svc.AddSentence(authCtx(uuid.New()), AddSentenceInput{Text: "hora"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert failed")
}

// ---------------------------------------------------------------------------
// DeleteSentence
// ---------------------------------------------------------------------------

func TestDeleteSentence_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sentID := uuid.New()

	var deleted, refsRemoved bool
	sentences := &mockSentenceRepo{
		DeletePersonalFunc: func(ctx context.Context, uid, sid uuid.UUID) error {
			assert.Equal(t, userID, uid)
			assert.Equal(t, sentID, sid)
			deleted = true
			return nil
		},
	}
	entries := &mockEntryRepo{
		RemoveSentenceRefFunc: func(ctx context.Context, scope domain.Scope, sid domain.SentenceID) (int, error) {
			assert.Equal(t, domain.PersonalSentenceID(sentID), sid)
			refsRemoved = true
			return 2, nil
		},
	}

	svc := newTestService(sentences, entries, nil)
	err := svc.DeleteSentence(authCtx(userID), DeleteSentenceInput{SentenceID: sentID})

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, refsRemoved)
}

func TestDeleteSentence_NotFound(t *testing.T) {
	t.Parallel()

	sentences := &mockSentenceRepo{
		DeletePersonalFunc: func(ctx context.Context, uid, sid uuid.UUID) error {
			return domain.ErrNotFound
		},
	}

	svc := newTestService(sentences, &mockEntryRepo{}, nil)
	err := svc.DeleteSentence(authCtx(uuid.New()), DeleteSentenceInput{SentenceID: uuid.New()})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSentence_Unauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockSentenceRepo{}, &mockEntryRepo{}, nil)
	err := svc.DeleteSentence(context.Background(), DeleteSentenceInput{SentenceID: uuid.New()})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ---------------------------------------------------------------------------
// DeleteEntry
// ---------------------------------------------------------------------------

func TestDeleteEntry_CascadesToSentences(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sidA := uuid.New()
	sidB := uuid.New()

	var deletedSentences []uuid.UUID
	sentences := &mockSentenceRepo{
		DeletePersonalFunc: func(ctx context.Context, uid, sid uuid.UUID) error {
			deletedSentences = append(deletedSentences, sid)
			return nil
		},
	}
	entries := &mockEntryRepo{
		LookupFunc: func(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error) {
			assert.Equal(t, "hora", baseWord)
			return &domain.IndexEntry{
				BaseWord: "hora",
				Scope:    scope,
				Variants: []string{"hora", "hoorraa"},
				SentenceIDs: []domain.SentenceID{
					domain.PersonalSentenceID(sidA),
					domain.PersonalSentenceID(sidB),
				},
			}, nil
		},
		RemoveSentenceRefFunc: func(ctx context.Context, scope domain.Scope, sid domain.SentenceID) (int, error) {
			return 0, nil
		},
		DeleteFunc: func(ctx context.Context, scope domain.Scope, baseWord string) error {
			// Pruning already removed the entry with its last reference.
			return domain.ErrNotFound
		},
	}

	svc := newTestService(sentences, entries, nil)
	err := svc.DeleteEntry(authCtx(userID), DeleteEntryInput{BaseWord: "hora"})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sidA, sidB}, deletedSentences)
}

func TestDeleteEntry_UnknownWord(t *testing.T) {
	t.Parallel()

	entries := &mockEntryRepo{
		LookupFunc: func(ctx context.Context, scope domain.Scope, baseWord string) (*domain.IndexEntry, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestService(&mockSentenceRepo{}, entries, nil)
	err := svc.DeleteEntry(authCtx(uuid.New()), DeleteEntryInput{BaseWord: "hora"})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEntry_RejectsNonNormalizedWord(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockSentenceRepo{}, &mockEntryRepo{}, nil)
	err := svc.DeleteEntry(authCtx(uuid.New()), DeleteEntryInput{BaseWord: "Hoorraa"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

// ---------------------------------------------------------------------------
// IngestGlobal
// ---------------------------------------------------------------------------

func TestIngestGlobal_AssignsSequentialIDsAndChunks(t *testing.T) {
	t.Parallel()

	var inserted []sentence.GlobalRow
	sentences := &mockSentenceRepo{
		RecordChunkSizeFunc: func(ctx context.Context, size int) error {
			assert.Equal(t, 1000, size)
			return nil
		},
		MaxGlobalIDFunc: func(ctx context.Context) (int64, error) { return 1999, nil },
		BulkInsertGlobalFunc: func(ctx context.Context, rows []sentence.GlobalRow) (int, error) {
			inserted = append(inserted, rows...)
			return len(rows), nil
		},
	}
	var upserts []indexentry.GlobalUpsert
	entries := &mockEntryRepo{
		BulkUpsertGlobalFunc: func(ctx context.Context, es []indexentry.GlobalUpsert) error {
			upserts = append(upserts, es...)
			return nil
		},
	}

	svc := newTestService(sentences, entries, nil)
	report, err := svc.IngestGlobal(context.Background(), []string{
		"Hoorraa baga gammaddan",
		"",
		"baga nagaan dhuftan",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Sentences)

	require.Len(t, inserted, 2)
	assert.Equal(t, int64(2000), inserted[0].ID)
	assert.Equal(t, 2, inserted[0].Chunk)
	assert.Equal(t, int64(2001), inserted[1].ID)

	// "baga" appears in both sentences and must carry both references.
	var baga *indexentry.GlobalUpsert
	for i := range upserts {
		if upserts[i].BaseWord == "baga" {
			baga = &upserts[i]
		}
	}
	require.NotNil(t, baga)
	assert.Equal(t, []string{"2000", "2001"}, baga.SentenceIDs)
}

func TestIngestGlobal_ChunkForLargeIDs(t *testing.T) {
	t.Parallel()

	// Ids past 32 bits must keep dividing in int64.
	const maxID = int64(5_000_000_000)

	var inserted []sentence.GlobalRow
	sentences := &mockSentenceRepo{
		RecordChunkSizeFunc: func(ctx context.Context, size int) error { return nil },
		MaxGlobalIDFunc:     func(ctx context.Context) (int64, error) { return maxID, nil },
		BulkInsertGlobalFunc: func(ctx context.Context, rows []sentence.GlobalRow) (int, error) {
			inserted = append(inserted, rows...)
			return len(rows), nil
		},
	}
	entries := &mockEntryRepo{
		BulkUpsertGlobalFunc: func(ctx context.Context, es []indexentry.GlobalUpsert) error { return nil },
	}

	svc := newTestService(sentences, entries, nil)
	_, err := svc.IngestGlobal(context.Background(), []string{"hora bule"})

	require.NoError(t, err)
	require.Len(t, inserted, 1)
	assert.Equal(t, maxID+1, inserted[0].ID)
	assert.Equal(t, int((maxID+1)/1000), inserted[0].Chunk)
}

func TestIngestGlobal_ChunkSizeConflict(t *testing.T) {
	t.Parallel()

	sentences := &mockSentenceRepo{
		RecordChunkSizeFunc: func(ctx context.Context, size int) error {
			return domain.ErrConflict
		},
	}

	svc := newTestService(sentences, &mockEntryRepo{}, nil)
	_, err := svc.IngestGlobal(context.Background(), []string{"hora"})

	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestIngestGlobal_EmptyInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockSentenceRepo{}, &mockEntryRepo{}, nil)
	report, err := svc.IngestGlobal(context.Background(), []string{"", "   "})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Sentences)
}

// ---------------------------------------------------------------------------
// ListSentences
// ---------------------------------------------------------------------------

func TestListSentences_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sentences := &mockSentenceRepo{
		ListPersonalFunc: func(ctx context.Context, uid uuid.UUID, filter domain.SentenceFilter) ([]domain.Sentence, int, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, 10, filter.Limit)
			return []domain.Sentence{
				{ID: domain.PersonalSentenceID(uuid.New()), Text: "hora bule"},
			}, 1, nil
		},
	}

	svc := newTestService(sentences, &mockEntryRepo{}, nil)
	page, err := svc.ListSentences(authCtx(userID), ListSentencesInput{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Sentences, 1)
}

func TestListSentences_InvalidSortOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockSentenceRepo{}, &mockEntryRepo{}, nil)
	_, err := svc.ListSentences(authCtx(uuid.New()), ListSentencesInput{SortOrder: "sideways"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
