package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a shared Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance at redisURL. A failed initial
// ping is logged but not fatal: the store simply reports unavailable until
// connectivity returns.
func NewRedisStore(redisURL string) *RedisStore {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.GetLogger().Errorf("cache: failed to parse redis URL, using defaults: %v", err)
		opts = &redis.Options{Addr: "localhost:6379"}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().Errorf("cache: redis unreachable at startup: %v", err)
	} else {
		logger.GetLogger().Info("cache: connected to redis")
	}

	return &RedisStore{client: client}
}

// Get implements Store.Get. Misses and connection errors both report absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.GetLogger().Warnf("cache: get %s failed: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// Set implements Store.Set.
func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// DeleteMatching implements Store.DeleteMatching. Matching keys are collected
// with SCAN and removed with UNLINK so large invalidations never block the
// server.
func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return deleted, fmt.Errorf("cache: scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			pipe := s.client.Pipeline()
			for _, k := range keys {
				pipe.Unlink(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return deleted, fmt.Errorf("cache: unlink: %w", err)
			}
			deleted += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return deleted, nil
}

// Available implements Store.Available via a short-deadline ping. A timeout
// is treated the same as a refused connection.
func (s *RedisStore) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err() == nil
}

// Close implements Store.Close.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
