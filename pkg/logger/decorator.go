package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// FromContextKey returns an extractor logging the value stored under key as
// attribute name. Missing and empty string values are skipped.
//
//	log := logger.New(logger.FromContextKey(tenantKey{}, "tenant"))
func FromContextKey(key any, name string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		switch v := ctx.Value(key).(type) {
		case nil:
			return slog.Attr{}, false
		case string:
			if v == "" {
				return slog.Attr{}, false
			}
			return slog.String(name, v), true
		default:
			return slog.Any(name, v), true
		}
	}
}

// LogHandlerDecorator wraps a slog.Handler and adds the attributes returned
// by its extractors to every record. Extractors run on each Handle call, so
// request-scoped values are read from the context the record is logged with.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewLogHandlerDecorator decorates next with extractors. Nil extractors are
// dropped; without any extractor next is returned as is.
func NewLogHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &LogHandlerDecorator{next: next, extractors: clean}
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandlerDecorator{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{next: h.next.WithGroup(name), extractors: h.extractors}
}
