package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *RedisCalendarCache) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return s, NewRedisCalendarCache(client, time.Minute)
}

func TestRedisCalendarCache(t *testing.T) {
	s, cache := setupCache(t)
	ctx := context.Background()

	t.Run("MissBeforeSet", func(t *testing.T) {
		_, ok, err := cache.GetPublicCalendar(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		payload := []byte(`[{"id":"abc","status":"pending"}]`)
		require.NoError(t, cache.SetPublicCalendar(ctx, payload))

		got, ok, err := cache.GetPublicCalendar(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, payload, got)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, cache.SetPublicCalendar(ctx, []byte("[]")))
		require.NoError(t, cache.Invalidate(ctx))

		_, ok, err := cache.GetPublicCalendar(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		require.NoError(t, cache.SetPublicCalendar(ctx, []byte("[]")))
		s.FastForward(2 * time.Minute)

		_, ok, err := cache.GetPublicCalendar(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRedisRateLimit(t *testing.T) {
	s, cache := setupCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := cache.CheckRateLimit(ctx, "1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, err := cache.CheckRateLimit(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Another client has its own counter.
	allowed, err = cache.CheckRateLimit(ctx, "5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The window resets the counter.
	s.FastForward(2 * time.Minute)
	allowed, err = cache.CheckRateLimit(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
