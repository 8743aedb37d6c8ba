package internal

import (
	"log/slog"

	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithBaseDomain configures the base domain for subdomain extraction.
// This enables c.Subdomain() to work without parameters.
//
// Example:
//
//	husca.New(
//	    husca.WithBaseDomain("example.com"),
//	)
func WithBaseDomain(domain string) Option {
	return func(a *App) {
		a.baseDomain = domain
	}
}

// WithMiddleware adds units to the global slot set.
// Units run in the order provided, before any router.
func WithMiddleware(items ...slot.Loadable) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, items...)
	}
}

// WithRouters mounts routers. Values that are not web routers are ignored,
// so a package's whole export list can be passed as is.
func WithRouters(values ...any) Option {
	return func(a *App) {
		a.routers = append(a.routers, values...)
	}
}

// WithRouterPaths discovers routers in the files matching the glob patterns
// when the app is created. Discovery errors panic.
//
// Example:
//
//	husca.New(
//	    husca.WithRouterPaths("routes/**/*.go"),
//	)
func WithRouterPaths(patterns ...string) Option {
	return func(a *App) {
		a.routerPaths = append(a.routerPaths, patterns...)
	}
}

// WithLoader sets the loader used for router discovery.
// Defaults to the export registry filled by husca.Export.
func WithLoader(l router.Loader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithErrorHandler sets a custom handler for errors returned by the chain.
// When it fails without writing a response the default handler runs.
//
// Example:
//
//	husca.WithErrorHandler(func(c husca.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom handler for requests the chain left
// unanswered.
//
// Example:
//
//	husca.WithNotFoundHandler(func(c husca.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	husca.WithHealthChecks(
//	    husca.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := newHealthConfig()
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	husca.New(
//	    husca.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	husca.New(
//	    husca.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
