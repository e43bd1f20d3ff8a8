// Package ingest drives the extraction-to-storage pipeline for a single
// document: extract, normalize, embed, persist.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/extract"
	"github.com/docdex-io/docdex/internal/metrics"
	"github.com/docdex-io/docdex/internal/reader"
)

// ChunkFailure records a chunk whose embedding could not be produced.
type ChunkFailure struct {
	ChunkID string `json:"chunk_id"`
	Error   string `json:"error"`
}

// Report summarizes one document ingest.
type Report struct {
	DocID           string         `json:"doc_id"`
	FileName        string         `json:"file_name"`
	Created         bool           `json:"created"`
	ChunksExtracted int            `json:"chunks_extracted"`
	ChunksEmbedded  int            `json:"chunks_embedded"`
	Failures        []ChunkFailure `json:"failures,omitempty"`
}

type Service struct {
	extractor        Extractor
	embedder         domain.Embedder
	storage          Storage
	normalizer       *extract.Normalizer
	readers          []reader.FileReader
	embedConcurrency int
	logger           *zap.Logger
}

func NewService(
	extractor Extractor,
	embedder domain.Embedder,
	storage Storage,
	normalizer *extract.Normalizer,
	readers []reader.FileReader,
	embedConcurrency int,
	logger *zap.Logger,
) *Service {
	if embedConcurrency < 1 {
		embedConcurrency = 1
	}
	return &Service{
		extractor:        extractor,
		embedder:         embedder,
		storage:          storage,
		normalizer:       normalizer,
		readers:          readers,
		embedConcurrency: embedConcurrency,
		logger:           logger,
	}
}

// IngestFile reads the file from disk and ingests its text under the
// file's own base name.
func (s *Service) IngestFile(ctx context.Context, path string) (Report, error) {
	return s.IngestFileAs(ctx, path, filepath.Base(path))
}

// IngestFileAs reads the file at path but records fileName as the document
// name. Used when the on-disk name is a staging artifact, such as an HTTP
// upload spooled to a temp file.
func (s *Service) IngestFileAs(ctx context.Context, path, fileName string) (Report, error) {
	r, err := reader.ForPath(s.readers, path)
	if err != nil {
		return Report{}, err
	}
	text, err := r.ReadText(path)
	if err != nil {
		return Report{}, err
	}
	return s.Ingest(ctx, fileName, text)
}

// Ingest runs the full pipeline on already-read text. Embedding failures
// for individual chunks do not abort the ingest: the affected chunks are
// dropped from the storage batch, logged, and reported in the result.
func (s *Service) Ingest(ctx context.Context, fileName, text string) (Report, error) {
	payload, err := s.extractor.Extract(ctx, fileName, text)
	if err != nil {
		return Report{}, fmt.Errorf("extract %s: %w", fileName, err)
	}

	doc, chunks, err := s.normalizer.Normalize(payload, fileName)
	if err != nil {
		return Report{}, fmt.Errorf("normalize %s: %w", fileName, err)
	}

	failures := s.embedChunks(ctx, chunks)

	embedded := make([]domain.Chunk, 0, len(chunks))
	for i := range chunks {
		if len(chunks[i].Embedding) > 0 {
			embedded = append(embedded, chunks[i])
		}
	}

	created, err := s.storage.UpsertDocument(ctx, doc)
	if err != nil {
		return Report{}, err
	}
	if err := s.storage.UpsertChunks(ctx, embedded); err != nil {
		return Report{}, err
	}

	report := Report{
		DocID:           doc.DocID,
		FileName:        doc.FileName,
		Created:         created,
		ChunksExtracted: len(chunks),
		ChunksEmbedded:  len(embedded),
		Failures:        failures,
	}
	s.logger.Info("document ingested",
		zap.String("doc_id", doc.DocID),
		zap.String("file_name", doc.FileName),
		zap.Bool("created", created),
		zap.Int("chunks", report.ChunksExtracted),
		zap.Int("embedded", report.ChunksEmbedded),
		zap.Int("failed", len(failures)),
	)
	return report, nil
}

// embedChunks fills in embeddings with bounded concurrency. Failures are
// collected instead of propagated so one bad chunk never cancels the rest
// of the batch.
func (s *Service) embedChunks(ctx context.Context, chunks []domain.Chunk) []ChunkFailure {
	var (
		mu       sync.Mutex
		failures []ChunkFailure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedConcurrency)

	for i := range chunks {
		i := i
		g.Go(func() error {
			c := &chunks[i]
			result, err := s.embedder.Embed(ctx, c.ChunkText)
			if err != nil {
				s.logger.Warn("chunk embedding failed",
					zap.String("chunk_id", c.ChunkID), zap.Error(err))
				metrics.ExtractionChunksTotal.WithLabelValues("embed_failed").Inc()
				mu.Lock()
				failures = append(failures, ChunkFailure{ChunkID: c.ChunkID, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			c.Embedding = result.Embedding
			c.EmbeddingModel = result.Model
			metrics.ExtractionChunksTotal.WithLabelValues("embedded").Inc()
			return nil
		})
	}

	// Workers never return errors, Wait only observes context cancellation.
	_ = g.Wait()
	return failures
}
