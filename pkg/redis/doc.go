// Package redis opens pooled go-redis clients and exposes them to the rest of
// an application as readiness checks and shutdown hooks.
//
// Open validates the URL, applies pool and timeout settings and pings the
// server. Failed pings are retried with a linearly growing wait until the
// attempts run out or the context is done:
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0",
//	    redis.WithPoolSize(20),
//	    redis.WithRetry(5, time.Second),
//	)
//
// Config carries the same settings with env and yaml tags, so the connection
// can be described next to the rest of the application configuration:
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.OpenConfig(ctx, cfg)
//
// The client plugs into the app shell:
//
//	app := husca.New(
//	    husca.WithHealthChecks(
//	        husca.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	    ),
//	)
//	err = husca.Run(husca.Fallback(app), husca.ShutdownHook(redis.Shutdown(client)))
package redis
