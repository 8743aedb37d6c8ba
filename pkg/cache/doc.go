// Package cache provides a generic key-value Cache with memory, file and
// Redis backends.
//
// Code that needs a cache takes a Cache[V] and leaves the backend to the
// application. The rate limiter in middlewares keeps its token buckets this
// way, and the example service stores users in memory or in Redis.
//
// Set takes a TTL: a positive value expires the entry after that long, zero
// uses the default TTL (one hour unless WithDefaultTTL says otherwise) and a
// negative value never expires.
//
// # Backends
//
// NewMemory keeps entries in process, with optional LRU bounds and an evict
// callback:
//
//	c := cache.NewMemory[*Session](
//	    cache.WithMaxEntries(10_000),
//	    cache.WithCleanupInterval(30*time.Second),
//	)
//	defer c.Close()
//
// NewFile keeps one file per key under a directory, so entries survive
// restarts. File names are xxhash digests of the keys and writes are atomic
// renames.
//
// NewRedis stores encoded values in Redis under an optional key prefix.
// The client comes from pkg/redis and is not owned by the cache:
//
//	users := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
//
// The file and Redis backends encode values with a Marshaler; nil means JSON.
//
// # Computing on miss
//
// GetOrSet computes missing values. Concurrent misses for one key on one
// cache share a single call:
//
//	u, err := cache.GetOrSet(ctx, users, id, func(ctx context.Context) (User, time.Duration, error) {
//	    u, err := repo.Find(ctx, id)
//	    return u, 5 * time.Minute, err
//	})
//
// Misses fail with ErrNotFound, writes to a closed memory or file cache with
// ErrClosed, and codec failures wrap ErrMarshal or ErrUnmarshal.
package cache
