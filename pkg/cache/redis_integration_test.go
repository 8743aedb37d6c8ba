//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/pkg/cache"
	"github.com/dmitrymomot/husca/pkg/redis"
)

func redisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	client, err := redis.Open(context.Background(), url, redis.WithRetry(1, 0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := redisClient(t)

	newCache := func(t *testing.T, opts ...cache.Option) *cache.Redis[page] {
		prefix := fmt.Sprintf("test:%s:%d", t.Name(), time.Now().UnixNano())
		c := cache.NewRedis[page](client, nil, append([]cache.Option{cache.WithPrefix(prefix)}, opts...)...)
		t.Cleanup(func() { _ = c.Clear(context.Background()) })
		return c
	}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		c := newCache(t)

		_, err := c.Get(ctx, "home")
		require.ErrorIs(t, err, cache.ErrNotFound)

		require.NoError(t, c.Set(ctx, "home", page{Title: "Home", Views: 1}, time.Minute))
		got, err := c.Get(ctx, "home")
		require.NoError(t, err)
		require.Equal(t, page{Title: "Home", Views: 1}, got)

		has, err := c.Has(ctx, "home")
		require.NoError(t, err)
		require.True(t, has)

		require.NoError(t, c.Delete(ctx, "home"))
		require.NoError(t, c.Delete(ctx, "home"))
		has, err = c.Has(ctx, "home")
		require.NoError(t, err)
		require.False(t, has)
	})

	t.Run("ttl", func(t *testing.T) {
		t.Parallel()
		c := newCache(t, cache.WithDefaultTTL(200*time.Millisecond))

		require.NoError(t, c.Set(ctx, "default", page{}, 0))
		require.NoError(t, c.Set(ctx, "forever", page{}, -1))

		require.Eventually(t, func() bool {
			has, _ := c.Has(ctx, "default")
			return !has
		}, 2*time.Second, 50*time.Millisecond)

		has, err := c.Has(ctx, "forever")
		require.NoError(t, err)
		require.True(t, has)
	})

	t.Run("clear keeps other prefixes", func(t *testing.T) {
		t.Parallel()
		a, b := newCache(t), newCache(t)

		for i := range 600 {
			require.NoError(t, a.Set(ctx, fmt.Sprint(i), page{Views: i}, time.Minute))
		}
		require.NoError(t, b.Set(ctx, "kept", page{}, time.Minute))

		require.NoError(t, a.Clear(ctx))

		has, err := a.Has(ctx, "599")
		require.NoError(t, err)
		require.False(t, has)
		has, err = b.Has(ctx, "kept")
		require.NoError(t, err)
		require.True(t, has)
	})

	t.Run("get or set", func(t *testing.T) {
		t.Parallel()
		c := newCache(t)

		calls := 0
		load := func(context.Context) (page, time.Duration, error) {
			calls++
			return page{Title: "computed"}, time.Minute, nil
		}
		for range 3 {
			got, err := cache.GetOrSet[page](ctx, c, "k", load)
			require.NoError(t, err)
			require.Equal(t, "computed", got.Title)
		}
		require.Equal(t, 1, calls)
	})
}
