// Package cache holds a Redis read-through cache for reputation scores.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"privid/internal/reputation/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
)

const keyPrefix = "privid:reputation:"

// RedisCache stores scores with TTL eviction. A stale entry lives at most ttl
// after an adjustment whose invalidation failed.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed score cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached score or sentinel.ErrNotFound on a miss.
func (c *RedisCache) Get(ctx context.Context, role models.Role, p id.Principal) (int, error) {
	raw, err := c.client.Get(ctx, cacheKey(role, p)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("get cached reputation: %w", err)
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("decode cached reputation: %w", err)
	}
	return score, nil
}

func (c *RedisCache) Set(ctx context.Context, role models.Role, p id.Principal, score int) error {
	if err := c.client.Set(ctx, cacheKey(role, p), strconv.Itoa(score), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache reputation: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, role models.Role, p id.Principal) error {
	if err := c.client.Del(ctx, cacheKey(role, p)).Err(); err != nil {
		return fmt.Errorf("invalidate cached reputation: %w", err)
	}
	return nil
}

func cacheKey(role models.Role, p id.Principal) string {
	return keyPrefix + models.Key(role, p)
}
