package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/pkg/logger"
)

type tenantKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNewWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("json with extractors", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Output: &buf}, logger.FromContextKey(tenantKey{}, "tenant"))

		ctx := context.WithValue(t.Context(), tenantKey{}, "acme")
		log.InfoContext(ctx, "invoice sent", slog.Int("amount", 10))

		entry := decode(t, &buf)
		assert.Equal(t, "invoice sent", entry["msg"])
		assert.Equal(t, "acme", entry["tenant"])
		assert.InDelta(t, 10, entry["amount"], 0)
	})

	t.Run("text format and level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Output: &buf, Format: "TEXT", Level: slog.LevelWarn})

		log.Info("hidden")
		log.Warn("shown", "k", "v")

		out := buf.String()
		require.NotContains(t, out, "hidden")
		require.Contains(t, out, "msg=shown")
		require.Contains(t, out, "k=v")
	})
}

func TestFromContextKey(t *testing.T) {
	t.Parallel()

	ex := logger.FromContextKey(tenantKey{}, "tenant")

	_, ok := ex(t.Context())
	require.False(t, ok)

	_, ok = ex(context.WithValue(t.Context(), tenantKey{}, ""))
	require.False(t, ok)

	attr, ok := ex(context.WithValue(t.Context(), tenantKey{}, 42))
	require.True(t, ok)
	require.Equal(t, "tenant", attr.Key)
	require.Equal(t, int64(42), attr.Value.Any())
}

func TestLogHandlerDecorator(t *testing.T) {
	t.Parallel()

	t.Run("without extractors returns the handler", func(t *testing.T) {
		t.Parallel()
		h := slog.NewJSONHandler(&bytes.Buffer{}, nil)
		require.Same(t, h, logger.NewLogHandlerDecorator(h, nil))
	})

	t.Run("extractors survive attrs and groups", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		h := logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), logger.FromContextKey(tenantKey{}, "tenant"))
		log := slog.New(h).With("component", "billing")

		log.InfoContext(context.WithValue(t.Context(), tenantKey{}, "acme"), "charged")

		entry := decode(t, &buf)
		assert.Equal(t, "billing", entry["component"])
		assert.Equal(t, "acme", entry["tenant"])
	})
}

// failing rejects every record.
type failing struct{ slog.Handler }

func (failing) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, errs bytes.Buffer
	h := logger.Fanout(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("app", "husca")

	require.False(t, h.Enabled(t.Context(), slog.LevelDebug))

	log.Info("started")
	log.Error("crashed")

	require.Equal(t, 2, strings.Count(info.String(), "app=husca"))
	require.NotContains(t, errs.String(), "started")
	require.Contains(t, errs.String(), "crashed")

	t.Run("errors are joined", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		ok := slog.NewTextHandler(&buf, nil)
		h := logger.Fanout(failing{ok}, ok)

		err := h.Handle(t.Context(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))
		require.EqualError(t, err, "sink down")
		require.Contains(t, buf.String(), "msg=x")
	})
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(t.Context(), slog.LevelError))
	log.Error("dropped")
}

func TestNewWithSentryWithoutDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithSentry(logger.SentryConfig{Local: logger.Config{Output: &buf}})
	log.Error("local only")

	require.Equal(t, "local only", decode(t, &buf)["msg"])
}
