package chi

import (
	"context"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/usecase/ingest"
)

// Ingestor runs the document pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, fileName, text string) (ingest.Report, error)
	IngestFileAs(ctx context.Context, path, fileName string) (ingest.Report, error)
}

// Searcher serves retrieval queries.
type Searcher interface {
	Semantic(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)
	Keyword(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)
}

// DocumentStore reads and deletes stored documents.
type DocumentStore interface {
	GetDocument(ctx context.Context, docID string) (domain.Document, error)
	ListChunks(ctx context.Context, docID string) ([]domain.Chunk, error)
	DeleteDocument(ctx context.Context, docID string) error
	Stats(ctx context.Context) (domain.Stats, error)
	Ping(ctx context.Context) error
}
