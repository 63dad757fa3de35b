package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKey = "platform:stats"

// Store wraps the redis client for short-lived caching. The stats
// snapshot is the only cached value today.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Client() *redis.Client { return s.rdb }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) GetCachedStats(ctx context.Context, out any) (bool, error) {
	b, err := s.rdb.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) SetCachedStats(ctx context.Context, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statsKey, b, ttl).Err()
}

func (s *Store) InvalidateStats(ctx context.Context) error {
	return s.rdb.Del(ctx, statsKey).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }
