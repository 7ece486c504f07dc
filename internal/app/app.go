// Package app wires configuration, storage, services, and the HTTP
// transport into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/indexentry"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/postgres/sentence"
	"github.com/obsa-dev/sirreessaa-backend/internal/adapter/rediscache"
	"github.com/obsa-dev/sirreessaa-backend/internal/auth"
	"github.com/obsa-dev/sirreessaa-backend/internal/config"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/analyzer"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/corpus"
	"github.com/obsa-dev/sirreessaa-backend/internal/transport/middleware"
	"github.com/obsa-dev/sirreessaa-backend/internal/transport/rest"
)

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The cache is an optimization; start without it.
			logger.Warn("redis unreachable, running without entry cache",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()))
			redisClient = nil
		}
	}

	sentenceRepo := sentence.New(pool)
	entryRepo := indexentry.New(pool)
	entryCache := rediscache.New(entryRepo, redisClient, cfg.Redis.TTL, logger)
	txManager := postgres.NewTxManager(pool)

	corpusSvc := corpus.NewService(logger, sentenceRepo, entryRepo, entryCache, txManager, corpus.Limits{
		MaxSentenceLength:   cfg.Corpus.MaxSentenceLength,
		MaxSentencesPerUser: cfg.Corpus.MaxSentencesPerUser,
		ChunkSize:           cfg.Corpus.ChunkSize,
		IngestBatchSize:     cfg.Corpus.IngestBatchSize,
	})
	analyzerSvc := analyzer.NewService(logger, entryCache, sentenceRepo, analyzer.Limits{
		SuggestionLimit:         cfg.Corpus.SuggestionLimit,
		AnalysisSuggestionLimit: cfg.Corpus.AnalysisSuggestionLimit,
	})

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	analyzerHandler := rest.NewAnalyzerHandler(analyzerSvc, logger)
	corpusHandler := rest.NewCorpusHandler(corpusSvc, logger)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/analyze", analyzerHandler.Analyze)
	mux.HandleFunc("POST /v1/suggestions", analyzerHandler.Suggestions)
	mux.HandleFunc("POST /v1/corpus/sentences", corpusHandler.AddSentence)
	mux.HandleFunc("GET /v1/corpus/sentences", corpusHandler.ListSentences)
	mux.HandleFunc("DELETE /v1/corpus/sentences/{id}", corpusHandler.DeleteSentence)
	mux.HandleFunc("DELETE /v1/corpus/entries/{baseWord}", corpusHandler.DeleteEntry)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.Server.RateLimitPerMinute > 0 {
		rateLimiter = middleware.NewRateLimiter(time.Minute)
		defer rateLimiter.Stop()
		mws = append(mws, rateLimiter.Limit(cfg.Server.RateLimitPerMinute))
	}
	mws = append(mws, middleware.Auth(jwtManager))

	handler := middleware.Chain(mws...)(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
