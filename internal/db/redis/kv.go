package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/docdex-io/docdex/internal/db"
)

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: "redis.get", Err: err}
	}
	val, err := resp.AsBytes()
	if err != nil {
		return nil, &db.Error{Op: "redis.get", Err: err}
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Build()).Error(); err != nil {
		return &db.Error{Op: "redis.set", Err: err}
	}
	return nil
}

func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: "redis.set", Err: err}
	}
	return nil
}
