package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/db"
	"github.com/docdex-io/docdex/internal/domain"
)

type mockKV struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	setTTLs map[string]time.Duration
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string][]byte{}, setTTLs: map[string]time.Duration{}}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setTTLs[key] = ttl
	return nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedEmbedderMissThenHit(t *testing.T) {
	kv := newMockKV()
	next := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.25, -1.5}, Model: "test-model", TotalTokens: 7,
	}}
	e := NewCachedEmbedder(next, kv, "test-model", time.Hour, zap.NewNop())

	first, err := e.Embed(context.Background(), "subsidy text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("got %d upstream calls, want 1", next.calls)
	}

	second, err := e.Embed(context.Background(), "subsidy text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("cache hit still called upstream: %d calls", next.calls)
	}
	if second.Model != "test-model" {
		t.Fatalf("cache hit lost model: %q", second.Model)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Fatalf("got %d dims, want %d", len(second.Embedding), len(first.Embedding))
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Fatalf("vector changed through the cache at %d: %v vs %v",
				i, first.Embedding[i], second.Embedding[i])
		}
	}
}

func TestCachedEmbedderAppliesTTL(t *testing.T) {
	kv := newMockKV()
	next := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, Model: "m"}}
	e := NewCachedEmbedder(next, kv, "m", 2*time.Hour, zap.NewNop())

	if _, err := e.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ttl := range kv.setTTLs {
		if ttl != 2*time.Hour {
			t.Fatalf("got ttl %v, want 2h", ttl)
		}
	}
	if len(kv.setTTLs) != 1 {
		t.Fatalf("got %d cache writes, want 1", len(kv.setTTLs))
	}
}

func TestCachedEmbedderCacheFailuresAreNotFatal(t *testing.T) {
	kv := newMockKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	next := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, Model: "m"}}
	e := NewCachedEmbedder(next, kv, "m", time.Hour, zap.NewNop())

	result, err := e.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("cache failure must fall through to the embedder: %v", err)
	}
	if len(result.Embedding) != 1 {
		t.Fatalf("got %v", result.Embedding)
	}
}

func TestCachedEmbedderPropagatesUpstreamError(t *testing.T) {
	next := &mockEmbedder{err: domain.ErrEmbedding}
	e := NewCachedEmbedder(next, newMockKV(), "m", time.Hour, zap.NewNop())

	_, err := e.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestCacheKeyDependsOnModel(t *testing.T) {
	if cacheKey("model-a", "text") == cacheKey("model-b", "text") {
		t.Fatal("different models must not share cache entries")
	}
	if cacheKey("m", "text a") == cacheKey("m", "text b") {
		t.Fatal("different texts must not share cache entries")
	}
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -3.25, 1e-8}
	out, err := bytesToVector(vectorToBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d dims, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("value %d changed: %v vs %v", i, in[i], out[i])
		}
	}

	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated encoding")
	}
}
