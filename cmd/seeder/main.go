// Command seeder ingests a corpus text file into the shared global corpus.
// The input file contains one sentence per line; blank lines are skipped.
// It is intended to be run offline, not as part of the main server.
//
// Flags:
//
//	--file  path to the corpus text file (required)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/indexentry"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/sentence"
	"github.com/obsa-dev/sirreessaa-backend/internal/app"
	"github.com/obsa-dev/sirreessaa-backend/internal/config"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/corpus"
)

func main() {
	fileFlag := flag.String("file", "", "path to the corpus text file")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines, err := readLines(*fileFlag)
	if err != nil {
		logger.Error("read corpus file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("corpus file loaded",
		slog.String("file", *fileFlag),
		slog.Int("lines", len(lines)))

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := corpus.NewService(
		logger,
		sentence.New(pool),
		indexentry.New(pool),
		nil,
		postgres.NewTxManager(pool),
		corpus.Limits{
			MaxSentenceLength:   cfg.Corpus.MaxSentenceLength,
			MaxSentencesPerUser: cfg.Corpus.MaxSentencesPerUser,
			ChunkSize:           cfg.Corpus.ChunkSize,
			IngestBatchSize:     cfg.Corpus.IngestBatchSize,
		},
	)

	start := time.Now()
	report, err := svc.IngestGlobal(ctx, lines)
	if err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("ingest complete",
		slog.Int("sentences", report.Sentences),
		slog.Int("entries", report.Entries),
		slog.Duration("elapsed", time.Since(start)))
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
