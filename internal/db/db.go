// Package db defines the key-value store contract backing the embedding
// cache. The primary store (PostgreSQL) lives in repository/postgres; this
// layer only covers the Redis side.
package db

import (
	"context"
	"time"
)

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store is the full cache store contract.
type Store interface {
	KVStore
	Ping(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
