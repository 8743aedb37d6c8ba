// Command example is a small users service built with husca. It runs as a
// console application; the serve command starts the HTTP server.
//
//	go run ./example serve --addr=:3000
//	go run ./example users:create --name=Ann --email=ann@example.com
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/husca"
	"github.com/dmitrymomot/husca/example/commands"
	"github.com/dmitrymomot/husca/example/routes"
	"github.com/dmitrymomot/husca/middlewares"
	"github.com/dmitrymomot/husca/pkg/cache"
	"github.com/dmitrymomot/husca/pkg/config"
	"github.com/dmitrymomot/husca/pkg/logger"
	"github.com/dmitrymomot/husca/pkg/redis"
)

// Config is the example configuration. Values come from config.yaml, .env
// and the environment, in increasing priority.
type Config struct {
	Server   husca.ServerConfig `yaml:"server"`
	Log      logger.Config      `yaml:"log"`
	RedisURL string             `yaml:"redis_url" env:"REDIS_URL"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad[Config](
		config.WithFiles("config.yaml"),
		config.WithEnvFiles(".env"),
	)
	log := logger.NewWithConfig(cfg.Log, middlewares.RequestIDExtractor())

	store, hooks, checks := newStore(ctx, cfg.RedisURL)

	app := newApp(store, husca.WithCustomLogger(log), husca.WithHealthChecks(checks...))

	console := husca.NewConsole(
		husca.WithConsoleLogger(log),
		husca.WithCommanders(
			commands.Serve(app, cfg.Server, hooks...),
			commands.Users(store),
		),
	)

	code := console.Exec(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// newApp wires the web application around store.
func newApp(store cache.Cache[routes.User], opts ...husca.Option) *husca.App {
	reg := prometheus.NewRegistry()

	metrics := husca.NewRouter().Get("/metrics", husca.RouteConfig{
		Action: middlewares.MetricsHandler(reg),
	})

	return husca.New(append(opts,
		husca.WithMiddleware(
			middlewares.RequestID(),
			middlewares.RealIP(),
			middlewares.Recover(),
			middlewares.Metrics(reg).Unless(husca.Condition{Path: []string{"/metrics"}}),
			middlewares.Compress(),
		),
		husca.WithRouters(metrics, routes.Users(store)),
	)...)
}

// newStore keeps users in Redis when url is set and in memory otherwise.
func newStore(ctx context.Context, url string) (cache.Cache[routes.User], []husca.RunOption, []husca.HealthOption) {
	if url == "" {
		mem := cache.NewMemory[routes.User]()
		return mem, []husca.RunOption{husca.ShutdownHook(func(context.Context) error { return mem.Close() })}, nil
	}

	client := redis.MustOpen(ctx, url)
	return cache.NewRedis[routes.User](client, nil, cache.WithPrefix("users")),
		[]husca.RunOption{husca.ShutdownHook(redis.Shutdown(client))},
		[]husca.HealthOption{husca.WithReadinessCheck("redis", redis.Healthcheck(client))}
}
