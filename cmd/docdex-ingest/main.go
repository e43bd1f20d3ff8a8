// docdex-ingest runs the extraction pipeline over a directory of documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docdex-io/docdex/internal/config"
	"github.com/docdex-io/docdex/internal/export"
	"github.com/docdex-io/docdex/internal/extract"
	"github.com/docdex-io/docdex/internal/logger"
	"github.com/docdex-io/docdex/internal/metrics"
	"github.com/docdex-io/docdex/internal/reader"
	"github.com/docdex-io/docdex/internal/repository/postgres"
	"github.com/docdex-io/docdex/internal/transport/openai"
	"github.com/docdex-io/docdex/internal/usecase/ingest"
)

func main() {
	dir := flag.String("dir", ".", "directory of documents to ingest")
	pattern := flag.String("pattern", "", "only ingest files whose name contains this substring")
	exportDir := flag.String("export", "", "write JSON and CSV projections of each ingested document to this directory")
	flag.Parse()

	if err := run(*dir, *pattern, *exportDir); err != nil {
		fmt.Fprintf(os.Stderr, "docdex-ingest: %v\n", err)
		os.Exit(1)
	}
}

func run(dir, pattern, exportDir string) error {
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

	embedder := openai.NewEmbedder(openai.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	})
	extractor := openai.NewExtractor(openai.ExtractorConfig{
		APIKey:      cfg.Extraction.APIKey,
		BaseURL:     cfg.Extraction.BaseURL,
		Model:       cfg.Extraction.Model,
		Temperature: cfg.Extraction.Temperature,
		Timeout:     time.Duration(cfg.Extraction.TimeoutSec) * time.Second,
	})

	readers := []reader.FileReader{reader.Txt{}, reader.Universal{}}
	svc := ingest.NewService(extractor, embedder, store, extract.NewNormalizer(log), readers, cfg.Ingest.EmbedConcurrency, log)

	files, err := collectFiles(dir, pattern, readers)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn("no ingestable files found", zap.String("dir", dir), zap.String("pattern", pattern))
		return nil
	}
	log.Info("starting batch ingest", zap.Int("files", len(files)), zap.String("dir", dir))

	if exportDir != "" {
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	var (
		mu     sync.Mutex
		ok     int
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Ingest.FileConcurrency)

	for _, path := range files {
		path := path
		g.Go(func() error {
			report, err := svc.IngestFile(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Error("ingest failed", zap.String("path", path), zap.Error(err))
				// One bad file should not stop the batch.
				return nil
			}
			ok++
			if exportDir != "" {
				if err := exportDocument(gctx, store, exportDir, report.DocID); err != nil {
					log.Warn("export failed", zap.String("doc_id", report.DocID), zap.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("batch ingest finished", zap.Int("succeeded", ok), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func collectFiles(dir, pattern string, readers []reader.FileReader) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if pattern != "" && !strings.Contains(d.Name(), pattern) {
			return nil
		}
		if _, err := reader.ForPath(readers, path); err != nil {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

func exportDocument(ctx context.Context, store *postgres.Store, dir, docID string) error {
	doc, err := store.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	chunks, err := store.ListChunks(ctx, docID)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))

	jsonFile, err := os.Create(filepath.Join(dir, base+".json"))
	if err != nil {
		return err
	}
	defer jsonFile.Close()
	if err := export.WriteJSON(jsonFile, doc, chunks); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(dir, base+".csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()
	return export.WriteCSV(csvFile, doc, chunks)
}
