// Package search implements hybrid retrieval over stored chunks.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/domain"
)

type Service struct {
	repo         Repository
	embedder     domain.Embedder
	model        string
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewService(repo Repository, embedder domain.Embedder, model string, defaultLimit, maxLimit int, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		embedder:     embedder,
		model:        model,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// Semantic embeds the query and ranks chunks by cosine similarity,
// restricted to chunks embedded under the service's configured model.
func (s *Service) Semantic(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}
	limit, err := domain.ValidateLimit(limit, s.defaultLimit, s.maxLimit)
	if err != nil {
		return nil, err
	}

	result, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if result.Model != s.model {
		return nil, fmt.Errorf("%w: query embedded with %q, index uses %q",
			domain.ErrModelMismatch, result.Model, s.model)
	}

	hits, err := s.repo.SemanticSearch(ctx, result.Embedding, s.model, filters, limit)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("semantic search",
		zap.String("query", query), zap.Int("limit", limit), zap.Int("hits", len(hits)))
	return hits, nil
}

// Keyword ranks chunks by full-text relevance without touching the
// embedding provider.
func (s *Service) Keyword(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}
	limit, err := domain.ValidateLimit(limit, s.defaultLimit, s.maxLimit)
	if err != nil {
		return nil, err
	}

	hits, err := s.repo.KeywordSearch(ctx, query, filters, limit)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("keyword search",
		zap.String("query", query), zap.Int("limit", limit), zap.Int("hits", len(hits)))
	return hits, nil
}
