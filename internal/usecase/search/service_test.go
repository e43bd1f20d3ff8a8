package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/domain"
)

type mockRepo struct {
	semanticFunc func(ctx context.Context, query []float32, model string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)
	keywordFunc  func(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)

	gotModel   string
	gotFilters domain.SearchFilters
	gotLimit   int
}

func (m *mockRepo) SemanticSearch(ctx context.Context, query []float32, model string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error) {
	m.gotModel = model
	m.gotFilters = filters
	m.gotLimit = limit
	if m.semanticFunc != nil {
		return m.semanticFunc(ctx, query, model, filters, limit)
	}
	return []domain.SearchHit{}, nil
}

func (m *mockRepo) KeywordSearch(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error) {
	m.gotFilters = filters
	m.gotLimit = limit
	if m.keywordFunc != nil {
		return m.keywordFunc(ctx, query, filters, limit)
	}
	return []domain.SearchHit{}, nil
}

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.embedFunc(ctx, text)
}

func newTestService(t *testing.T, repo *mockRepo, emb *mockEmbedder) *Service {
	t.Helper()
	return NewService(repo, emb, "test-model", 5, 50, zap.NewNop())
}

func TestSemanticSearch(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, Model: "test-model"}, nil
	}}
	svc := newTestService(t, repo, emb)

	filters := domain.SearchFilters{ContentType: "payment", ApplicableCohort: "2023"}
	hits, err := svc.Semantic(context.Background(), "housing subsidy", filters, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if repo.gotLimit != 5 {
		t.Fatalf("default limit not applied: got %d", repo.gotLimit)
	}
	if repo.gotModel != "test-model" {
		t.Fatalf("model not passed through: got %q", repo.gotModel)
	}
	if repo.gotFilters != filters {
		t.Fatalf("filters not passed through: got %+v", repo.gotFilters)
	}
}

func TestSemanticSearchEmptyQuery(t *testing.T) {
	svc := newTestService(t, &mockRepo{}, &mockEmbedder{embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
		t.Fatal("embedder must not be called for an empty query")
		return domain.EmbeddingResult{}, nil
	}})

	_, err := svc.Semantic(context.Background(), "   ", domain.SearchFilters{}, 10)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSemanticSearchLimitClamped(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{Embedding: []float32{0.1}, Model: "test-model"}, nil
	}}
	svc := newTestService(t, repo, emb)

	if _, err := svc.Semantic(context.Background(), "q", domain.SearchFilters{}, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotLimit != 50 {
		t.Fatalf("limit not clamped: got %d", repo.gotLimit)
	}
}

func TestSemanticSearchModelMismatch(t *testing.T) {
	emb := &mockEmbedder{embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{Embedding: []float32{0.1}, Model: "other-model"}, nil
	}}
	svc := newTestService(t, &mockRepo{}, emb)

	_, err := svc.Semantic(context.Background(), "q", domain.SearchFilters{}, 5)
	if !errors.Is(err, domain.ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch, got %v", err)
	}
}

func TestSemanticSearchEmbedFailure(t *testing.T) {
	emb := &mockEmbedder{embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: timeout", domain.ErrEmbedding)
	}}
	svc := newTestService(t, &mockRepo{}, emb)

	_, err := svc.Semantic(context.Background(), "q", domain.SearchFilters{}, 5)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestKeywordSearch(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
		t.Fatal("keyword search must not touch the embedder")
		return domain.EmbeddingResult{}, nil
	}}
	svc := newTestService(t, repo, emb)

	hits, err := svc.Keyword(context.Background(), "subsidy", domain.SearchFilters{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if repo.gotLimit != 10 {
		t.Fatalf("limit not passed through: got %d", repo.gotLimit)
	}
	if emb.calls != 0 {
		t.Fatal("keyword search called the embedder")
	}
}

func TestKeywordSearchEmptyQuery(t *testing.T) {
	svc := newTestService(t, &mockRepo{}, &mockEmbedder{})

	_, err := svc.Keyword(context.Background(), "", domain.SearchFilters{}, 5)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
