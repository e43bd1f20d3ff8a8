// Package redis implements db.Store on top of a Redis-compatible server.
package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/docdex-io/docdex/internal/db"
)

type Store struct {
	client rueidis.Client
}

var _ db.Store = (*Store)(nil)

func NewStore(addrs []string, password string) (*Store, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  addrs,
		Password:     password,
		DisableCache: true,
	})
	if err != nil {
		return nil, &db.Error{Op: "redis.connect", Err: err}
	}
	return &Store{client: client}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: "redis.ping", Err: err}
	}
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls the server until it responds to PING or the timeout
// elapses. Used at startup when the cache container may still be booting.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if err := s.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return lastErr
}
