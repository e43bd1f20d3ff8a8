package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/metrics"
)

// Embedder produces vectors from an OpenAI-compatible embeddings endpoint.
type Embedder struct {
	client     *openai.Client
	provider   string
	model      string
	dimensions int
}

var _ domain.Embedder = (*Embedder)(nil)

type EmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Provider   string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

func NewEmbedder(cfg EmbedderConfig) *Embedder {
	return &Embedder{
		client:     newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		provider:   cfg.Provider,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if text == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: empty text", domain.ErrValidation)
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		return domain.EmbeddingResult{}, wrapAPIError(domain.ErrEmbedding, "create embeddings", err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%w: empty response", domain.ErrEmbedding)
	}

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%w: got %d dimensions, want %d",
			domain.ErrVectorDimMismatch, len(vec), e.dimensions)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "total").Add(float64(resp.Usage.TotalTokens))

	return domain.EmbeddingResult{
		Embedding:    vec,
		Model:        e.model,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}
