// Package embcache decorates an embedder with a key-value cache keyed by
// model and text, so repeated ingests of identical chunks skip the
// embedding API.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/db"
	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/metrics"
)

type CachedEmbedder struct {
	next   domain.Embedder
	kv     db.KVStore
	model  string
	ttl    time.Duration
	logger *zap.Logger
}

var _ domain.Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(next domain.Embedder, kv db.KVStore, model string, ttl time.Duration, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, kv: kv, model: model, ttl: ttl, logger: logger}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(e.model, text)

	cached, err := e.kv.Get(ctx, key)
	if err == nil {
		vec, decErr := bytesToVector(cached)
		if decErr == nil {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			return domain.EmbeddingResult{Embedding: vec, Model: e.model}, nil
		}
		e.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(decErr))
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		// Cache trouble is not fatal, fall through to the real embedder.
		e.logger.Warn("embedding cache read failed", zap.Error(err))
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	result, err := e.next.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if setErr := e.kv.SetWithTTL(ctx, key, vectorToBytes(result.Embedding), e.ttl); setErr != nil {
		e.logger.Warn("embedding cache write failed", zap.Error(setErr))
	}
	return result, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return fmt.Sprintf("emb:%s:%x", model, sum)
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector encoding length %d", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
