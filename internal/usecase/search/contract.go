package search

import (
	"context"

	"github.com/docdex-io/docdex/internal/domain"
)

// Repository serves ranked retrieval queries.
type Repository interface {
	SemanticSearch(ctx context.Context, query []float32, model string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)
	KeywordSearch(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)
}
