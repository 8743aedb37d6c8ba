package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/middlewares"
	"github.com/dmitrymomot/husca/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	capture := func(dst *string) internal.HandlerFunc {
		return func(c internal.Context) error {
			*dst = middlewares.GetRequestID(c)
			return noContent(c)
		}
	}

	t.Run("generates a UUID when not present", func(t *testing.T) {
		t.Parallel()
		var id string
		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), capture(&id), middlewares.RequestID())

		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, rec.Header().Get("X-Request-ID"))
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "upstream-id")

		var id string
		rec := run(t, req, capture(&id), middlewares.RequestID())
		require.Equal(t, "upstream-id", id)
		require.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
	})

	t.Run("unsafe upstream IDs are replaced", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("x", middlewares.MaxRequestIDLength+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header["X-Request-Id"] = []string{bad}
			req.Header.Set("X-Correlation-ID", "fallback-id")

			var id string
			run(t, req, capture(&id), middlewares.RequestID())
			require.Equal(t, "fallback-id", id)
		}
	})

	t.Run("header priority order", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "trace")
		req.Header.Set("X-Span-ID", "span")

		var id string
		run(t, req, capture(&id), middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Missing", "X-Span-ID", "X-Trace-ID")))
		require.Equal(t, "span", id)
	})

	t.Run("custom generator and response header", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		)
		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), noContent, mw)
		require.Equal(t, "fixed", rec.Header().Get("X-Trace"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("request ID is copied into HTTP errors", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "application/json")
		mw := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-9" }))
		rec := run(t, req, func(internal.Context) error { return internal.ErrNotFound("gone") }, mw)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "req-9", body["request_id"])
	})

	t.Run("GetRequestID without middleware", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, middlewares.GetRequestID(context.Background()))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	t.Run("request_id is added to request logs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), middlewares.RequestIDExtractor()))
		mw := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "log-1" }))

		runApp(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			c.LogInfo("handled")
			return noContent(c)
		}, []internal.Option{internal.WithCustomLogger(log), internal.WithMiddleware(mw)})

		require.Contains(t, buf.String(), `"request_id":"log-1"`)
	})

	t.Run("returns false without request ID", func(t *testing.T) {
		t.Parallel()
		_, ok := middlewares.RequestIDExtractor()(context.Background())
		require.False(t, ok)
	})
}
