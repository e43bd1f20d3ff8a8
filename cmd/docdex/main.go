// docdex serves the document extraction and retrieval API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/config"
	"github.com/docdex-io/docdex/internal/db"
	"github.com/docdex-io/docdex/internal/db/redis"
	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/extract"
	"github.com/docdex-io/docdex/internal/logger"
	"github.com/docdex-io/docdex/internal/metrics"
	"github.com/docdex-io/docdex/internal/reader"
	"github.com/docdex-io/docdex/internal/repository/embcache"
	"github.com/docdex-io/docdex/internal/repository/postgres"
	transport "github.com/docdex-io/docdex/internal/transport/chi"
	"github.com/docdex-io/docdex/internal/transport/openai"
	"github.com/docdex-io/docdex/internal/usecase/ingest"
	"github.com/docdex-io/docdex/internal/usecase/search"
	"github.com/docdex-io/docdex/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docdex: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}

	log, err := logger.New(env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting docdex",
		zap.String("env", env),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterExtractionMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if err := store.Migrate(ctx, cfg.Embedding.Dimensions, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct); err != nil {
		return err
	}

	embedder := buildEmbedder(ctx, cfg, log)

	extractor := openai.NewExtractor(openai.ExtractorConfig{
		APIKey:      cfg.Extraction.APIKey,
		BaseURL:     cfg.Extraction.BaseURL,
		Model:       cfg.Extraction.Model,
		Temperature: cfg.Extraction.Temperature,
		Timeout:     time.Duration(cfg.Extraction.TimeoutSec) * time.Second,
	})

	readers := []reader.FileReader{reader.Txt{}, reader.Universal{}}
	normalizer := extract.NewNormalizer(log)

	ingestSvc := ingest.NewService(extractor, embedder, store, normalizer, readers, cfg.Ingest.EmbedConcurrency, log)
	searchSvc := search.NewService(store, embedder, cfg.Embedding.Model, cfg.Search.DefaultLimit, cfg.Search.MaxLimit, log)

	server := transport.NewServer(ingestSvc, searchSvc, store, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.Int("port", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildEmbedder assembles the embedder chain: the API client wrapped in a
// Redis cache when one is configured. Cache unavailability downgrades to
// the uncached embedder instead of failing startup.
func buildEmbedder(ctx context.Context, cfg config.Config, log *zap.Logger) domain.Embedder {
	base := openai.NewEmbedder(openai.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	})

	if len(cfg.Cache.Addrs) == 0 {
		return base
	}

	var kv db.Store
	kv, err := redis.NewStore(cfg.Cache.Addrs, cfg.Cache.Password)
	if err == nil {
		err = kv.Ping(ctx)
	}
	if err != nil {
		log.Warn("embedding cache unavailable, continuing without it", zap.Error(err))
		return base
	}

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	return embcache.NewCachedEmbedder(base, kv, cfg.Embedding.Model, ttl, log)
}
