package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/indexentry"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/sentence"
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/internal/index"
)

// IngestReport summarizes one global ingest run.
type IngestReport struct {
	Sentences int
	Entries   int
}

// IngestGlobal appends sentences to the shared global corpus and builds
// their index entries. Ids continue from the current maximum; the chunk of a
// sentence is its id divided by the chunk size recorded at first ingest, so
// a later run with a different configured chunk size is rejected. Work is
// committed in batches, each batch transactional.
func (s *Service) IngestGlobal(ctx context.Context, sentences []string) (*IngestReport, error) {
	lines := make([]string, 0, len(sentences))
	for _, raw := range sentences {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return &IngestReport{}, nil
	}

	if err := s.sentences.RecordChunkSize(ctx, s.limits.ChunkSize); err != nil {
		return nil, err
	}

	maxID, err := s.sentences.MaxGlobalID(ctx)
	if err != nil {
		return nil, err
	}
	nextID := maxID + 1

	report := &IngestReport{}
	var touched []string

	for start := 0; start < len(lines); start += s.limits.IngestBatchSize {
		end := min(start+s.limits.IngestBatchSize, len(lines))
		batch := lines[start:end]

		rows := make([]sentence.GlobalRow, len(batch))
		merged := make(map[string]*indexentry.GlobalUpsert)
		var order []string

		for i, text := range batch {
			id := nextID + int64(start+i)
			rows[i] = sentence.GlobalRow{
				ID:    id,
				Chunk: int(id / int64(s.limits.ChunkSize)),
				Text:  text,
			}

			sid := string(domain.GlobalSentenceID(id))
			for _, e := range index.SentenceEntries(text) {
				m, ok := merged[e.BaseWord]
				if !ok {
					m = &indexentry.GlobalUpsert{BaseWord: e.BaseWord}
					merged[e.BaseWord] = m
					order = append(order, e.BaseWord)
				}
				for _, v := range e.Variants {
					if !containsString(m.Variants, v) {
						m.Variants = append(m.Variants, v)
					}
				}
				m.SentenceIDs = append(m.SentenceIDs, sid)
			}
		}

		upserts := make([]indexentry.GlobalUpsert, len(order))
		for i, w := range order {
			upserts[i] = *merged[w]
		}

		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			inserted, err := s.sentences.BulkInsertGlobal(txCtx, rows)
			if err != nil {
				return err
			}
			report.Sentences += inserted

			return s.entries.BulkUpsertGlobal(txCtx, upserts)
		})
		if err != nil {
			return nil, fmt.Errorf("ingest batch at %d: %w", start, err)
		}

		report.Entries += len(upserts)
		touched = append(touched, order...)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, touched...)
	}

	s.log.InfoContext(ctx, "global corpus ingested",
		slog.Int("sentences", report.Sentences),
		slog.Int("entries", report.Entries),
		slog.Int64("first_id", nextID),
	)

	return report, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
