// Package logger builds log/slog loggers with context extraction and
// optional Sentry reporting.
//
// A ContextExtractor pulls one attribute out of the context a record is
// logged with, so request-scoped values such as request IDs show up on every
// line without being passed around:
//
//	log := logger.NewWithConfig(
//	    logger.Config{Format: logger.FormatText, Level: slog.LevelDebug},
//	    middlewares.RequestIDExtractor(),
//	    logger.FromContextKey(tenantKey{}, "tenant"),
//	)
//	log.InfoContext(ctx, "invoice sent")
//
// Config carries env and yaml tags and can be loaded with pkg/config.
//
// NewWithSentry writes locally and to Sentry through
// github.com/getsentry/sentry-go/slog. Errors become Sentry issues; records
// at or above SentryConfig.MinLevel are stored as Sentry logs. Without a DSN
// the logger only writes locally, so the same setup works in development.
//
// Fanout combines handlers; NewNope discards everything and is the default
// of apps and consoles.
package logger
