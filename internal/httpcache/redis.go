package httpcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/walletd/pkg/logger"
)

// redisKeyPrefix namespaces cache keys within a shared Redis instance.
const redisKeyPrefix = "httpcache:"

// RedisStore is a Redis-backed Store for deployments running more than one
// walletd instance against the same upstream. TTL handling is delegated to
// Redis key expiry.
type RedisStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, log *logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log.WithField("component", "httpcache_redis"),
	}
}

// cachedResponse is the stored envelope for one response.
type cachedResponse struct {
	Body     []byte    `json:"body"`
	CachedAt time.Time `json:"cached_at"`
}

// Get returns the cached body for key if Redis still holds it.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		s.logger.Debug("cache miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached response: %w", err)
	}

	var cached cachedResponse
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}

	s.logger.Debug("cache hit", "key", key)
	return cached.Body, true, nil
}

// Set stores body under key with ttl.
func (s *RedisStore) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	cached := cachedResponse{
		Body:     body,
		CachedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached response: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached response: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Clear removes every entry under the cache prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()

	pipe := s.client.Pipeline()
	count := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++
		if count >= 100 {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			pipe = s.client.Pipeline()
			count = 0
		}
	}

	if count > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	return iter.Err()
}
