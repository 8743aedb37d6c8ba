package middlewares_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/middlewares"
)

// bufferLogger returns a text logger writing into a buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestRecover(t *testing.T) {
	t.Parallel()

	panicking := func(v any) internal.HandlerFunc {
		return func(internal.Context) error {
			panic(v)
		}
	}

	t.Run("panic becomes a plain 500 and is logged once with stack", func(t *testing.T) {
		t.Parallel()
		log, buf := bufferLogger()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := runApp(t, req, panicking("secret detail"), []internal.Option{
			internal.WithCustomLogger(log),
			internal.WithMiddleware(middlewares.Recover()),
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "secret detail")
		require.Equal(t, 1, strings.Count(buf.String(), "panic recovered"))
		require.Contains(t, buf.String(), "stack=")
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		t.Parallel()
		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), ok("fine"), middlewares.Recover())
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "fine", rec.Body.String())
	})

	t.Run("handler error is returned without modification", func(t *testing.T) {
		t.Parallel()
		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), func(internal.Context) error {
			return internal.ErrConflict("exists")
		}, middlewares.Recover())
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("respects DisablePrintStack option", func(t *testing.T) {
		t.Parallel()
		log, buf := bufferLogger()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		runApp(t, req, panicking("boom"), []internal.Option{
			internal.WithCustomLogger(log),
			internal.WithMiddleware(middlewares.Recover(middlewares.WithRecoverDisablePrintStack())),
		})
		require.Contains(t, buf.String(), "panic recovered")
		require.NotContains(t, buf.String(), "stack=")
	})

	t.Run("custom handler receives the panic value", func(t *testing.T) {
		t.Parallel()
		sentinel := errors.New("bad state")
		var got any
		mw := middlewares.Recover(middlewares.WithRecoverHandler(func(c internal.Context, pe *middlewares.PanicError) error {
			got = pe.Value
			return internal.ErrServiceUnavailable("")
		}))
		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), panicking(sentinel), mw)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, sentinel, got)
	})

	t.Run("panic values of any type", func(t *testing.T) {
		t.Parallel()
		for _, v := range []any{"text", 42, errors.New("err"), struct{ Code int }{7}} {
			rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), panicking(v), middlewares.Recover())
			require.Equal(t, http.StatusInternalServerError, rec.Code)
		}
	})
}

func TestPanicErrorHelpers(t *testing.T) {
	t.Parallel()

	pe := &middlewares.PanicError{Value: "boom"}
	require.Equal(t, "panic: boom", pe.Error())
	require.True(t, middlewares.IsPanicError(pe))

	got, ok := middlewares.AsPanicError(errors.Join(errors.New("outer"), pe))
	require.True(t, ok)
	require.Same(t, pe, got)

	require.False(t, middlewares.IsPanicError(errors.New("plain")))
	_, ok = middlewares.AsPanicError(nil)
	require.False(t, ok)
}
