package ingest

import (
	"context"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/extract"
)

// Extractor produces a structured payload from raw document text.
type Extractor interface {
	Extract(ctx context.Context, fileName, text string) (extract.Payload, error)
}

// Storage persists documents and their chunks.
type Storage interface {
	UpsertDocument(ctx context.Context, doc domain.Document) (bool, error)
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error
}
