// Package cache provides the Redis read-through layer for leaderboards.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of cache operations consumers depend on.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// RedisStore caches JSON values in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  counters
}

type counters struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	errors  atomic.Uint64
}

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Get decodes the cached value into dest. A miss returns false and no error.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.stats.misses.Add(1)
			return false, nil
		}
		s.stats.errors.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.stats.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	s.stats.hits.Add(1)
	return true, nil
}

// Set stores value with the default TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		s.stats.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		s.stats.errors.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}
	s.stats.sets.Add(1)
	return nil
}

// Delete removes one key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.stats.errors.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	s.stats.deletes.Add(1)
	return nil
}

// DeletePattern removes every key matching the glob pattern, scanning in
// batches so large keyspaces do not block Redis.
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+pattern, 100).Result()
		if err != nil {
			s.stats.errors.Add(1)
			return fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				s.stats.errors.Add(1)
				return fmt.Errorf("cache delete error: %w", err)
			}
			s.stats.deletes.Add(uint64(len(keys)))
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Stats returns the current counters.
func (s *RedisStore) Stats() Stats {
	hits, misses := s.stats.hits.Load(), s.stats.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    s.stats.sets.Load(),
		Deletes: s.stats.deletes.Load(),
		Errors:  s.stats.errors.Load(),
		HitRate: rate,
	}
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Noop is used when Redis is not configured. Every read misses.
type Noop struct{}

var _ Store = Noop{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error { return nil }
func (Noop) Delete(context.Context, string) error { return nil }
func (Noop) DeletePattern(context.Context, string) error { return nil }
