package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// LoggerConfig configures the access log middleware.
type LoggerConfig struct {
	SkipPaths []string // Exact paths never logged, e.g. health checks
	Level     slog.Level
}

// LoggerOption configures LoggerConfig.
type LoggerOption func(*LoggerConfig)

// WithLogSkipPaths excludes exact request paths from the access log.
func WithLogSkipPaths(paths ...string) LoggerOption {
	return func(cfg *LoggerConfig) {
		cfg.SkipPaths = append(cfg.SkipPaths, paths...)
	}
}

// WithLogLevel sets the level of successful requests.
// Client errors are logged at Warn and server errors at Error regardless.
func WithLogLevel(level slog.Level) LoggerOption {
	return func(cfg *LoggerConfig) {
		cfg.Level = level
	}
}

// Logger returns a slot writing one access log line per request with
// method, path, status, bytes, duration and, when set, the request id.
// A nil log means the app logger.
//
// The status is the one the app is about to send: results rendered after
// the chain count as 200 and errors as their HTTP status.
func Logger(log *slog.Logger, opts ...LoggerOption) *slot.Slot {
	cfg := &LoggerConfig{Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		if slices.Contains(cfg.SkipPaths, c.Request().URL.Path) {
			return next()
		}

		start := time.Now()
		res, err := next()

		status := responseStatus(c, res, err)
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Request().URL.Path),
			slog.Int("status", status),
			slog.Int64("bytes", c.ResponseWriter().Size()),
			slog.Duration("duration", time.Since(start)),
		}
		if id := GetRequestID(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level := cfg.Level
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		l := log
		if l == nil {
			l = c.Logger()
		}
		// The request context may already be cancelled by a timeout.
		l.LogAttrs(context.WithoutCancel(c), level, "request", attrs...)

		return res, err
	})
}

// responseStatus predicts the status of the response for a chain outcome.
func responseStatus(c internal.Context, res any, err error) int {
	switch {
	case c.Written():
		return c.Status()
	case err != nil:
		if he := internal.AsHTTPError(err); he != nil {
			return he.Code
		}
		return http.StatusInternalServerError
	case res != nil:
		return http.StatusOK
	default:
		return http.StatusNotFound
	}
}
