package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

// runConfig holds runtime configuration for the server.
type runConfig struct {
	address         string
	logger          *slog.Logger
	timeouts        serverTimeouts
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	domains         map[string]*App
	fallback        *App
	baseCtx         context.Context
}

// serverTimeouts overrides the default http.Server timeouts; zero keeps the default.
type serverTimeouts struct {
	read       time.Duration
	write      time.Duration
	idle       time.Duration
	readHeader time.Duration
}

// buildRunConfig creates a runConfig from the provided options.
func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		domains:         make(map[string]*App),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runtime builds the server configuration for the given handler.
func (c *runConfig) runtime(handler http.Handler) runtimeConfig {
	return runtimeConfig{
		handler:         handler,
		address:         c.address,
		logger:          c.logger,
		timeouts:        c.timeouts,
		shutdownTimeout: c.shutdownTimeout,
		startupHooks:    c.startupHooks,
		shutdownHooks:   c.shutdownHooks,
		baseCtx:         c.baseCtx,
	}
}

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the runtime logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ReadTimeout overrides the server read timeout (default 15s).
func ReadTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.timeouts.read = d
	}
}

// WriteTimeout overrides the server write timeout (default 30s).
func WriteTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.timeouts.write = d
	}
}

// IdleTimeout overrides the keep-alive idle timeout (default 120s).
func IdleTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.timeouts.idle = d
	}
}

// ReadHeaderTimeout overrides the header read timeout (default 5s).
func ReadHeaderTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.timeouts.readHeader = d
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function to run after the listener is open and
// before requests are served. A failing hook aborts the start.
//
// Example:
//
//	husca.StartupHook(func(ctx context.Context) error {
//	    return app.Discover(ctx, "routes/**/*.go")
//	})
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	husca.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// Domain maps a host pattern to an App.
// Patterns: "api.example.com" (exact) or "*.example.com" (wildcard)
//
// Example:
//
//	husca.Run(
//	    husca.Domain("api.acme.com", apiApp),
//	    husca.Domain("*.acme.com", tenantApp),
//	)
func Domain(pattern string, app *App) RunOption {
	return func(c *runConfig) {
		if pattern != "" && app != nil {
			c.domains[pattern] = app
		}
	}
}

// Fallback sets the default App for requests that don't match any domain.
// If no domains are configured, the fallback becomes the main handler.
func Fallback(app *App) RunOption {
	return func(c *runConfig) {
		if app != nil {
			c.fallback = app
		}
	}
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
