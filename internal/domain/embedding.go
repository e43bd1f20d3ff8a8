package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Failure is per-call; callers decide whether it is fatal.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries a vector, the identity of the model that produced
// it, and token usage through the decorator chain. Model travels with every
// vector so that stored and query embeddings can be checked for space
// compatibility.
type EmbeddingResult struct {
	Embedding    []float32
	Model        string
	PromptTokens int
	TotalTokens  int
}
