package repository

import (
	"context"
	"fmt"
	"time"

	"bjorkvang/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	publicCalendarKey  = "calendar:public"
	rateLimitKeyPrefix = "rate_limit:submit:"
)

// RedisCalendarCache keeps the rendered public calendar warm between
// mutations and tracks per-client submission rate limits.
type RedisCalendarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

// Ping verifies that Redis answers.
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return client.Ping(ctx).Err()
}

func NewRedisCalendarCache(client *redis.Client, ttl time.Duration) *RedisCalendarCache {
	return &RedisCalendarCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCalendarCache) GetPublicCalendar(ctx context.Context) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, publicCalendarKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get calendar from redis: %w", err)
	}
	return val, true, nil
}

func (r *RedisCalendarCache) SetPublicCalendar(ctx context.Context, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, publicCalendarKey, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set calendar in redis: %w", err)
	}
	return nil
}

// Invalidate drops the cached calendar. Called after every mutation so
// reads observe it immediately.
func (r *RedisCalendarCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, publicCalendarKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate calendar in redis: %w", err)
	}
	return nil
}

// CheckRateLimit counts submissions per client key within a window.
// Returns false once the limit is exceeded.
func (r *RedisCalendarCache) CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := rateLimitKeyPrefix + clientKey

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return count <= int64(limit), nil
}
