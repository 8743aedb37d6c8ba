package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" yaml:"environment"`
	Release     string `env:"SENTRY_RELEASE" yaml:"release"`
	// MinLevel is the lowest level stored as a Sentry log. Errors always
	// create issues. Defaults to warn.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"warn" yaml:"min_level"`
	// Local configures the handler that keeps logging locally.
	Local Config `yaml:"local"`
}

// NewWithSentry creates a logger writing locally and to Sentry.
// Without a DSN, or when the SDK fails to start, only the local handler is used.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	local := cfg.Local.Handler()

	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   levelsFrom(cfg.MinLevel),
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(Fanout(local, remote), extractors...))
}

// levelsFrom lists the standard levels at or above lowest.
func levelsFrom(lowest slog.Level) []slog.Level {
	var out []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= lowest {
			out = append(out, l)
		}
	}
	return out
}
