package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusBadRequest, "bad request")
		err := fmt.Errorf("handler failed: %w", httpErr)
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("double-wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusConflict, "conflict")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", httpErr))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("joined HTTPError", func(t *testing.T) {
		t.Parallel()
		err := errors.Join(errors.New("first"), internal.ErrTooManyRequests(""))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("something went wrong")
		require.False(t, internal.IsHTTPError(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusNotFound, "not found")
		got := internal.AsHTTPError(httpErr)
		require.NotNil(t, got)
		require.Equal(t, http.StatusNotFound, got.Code)
		require.Equal(t, "not found", got.Message)
	})

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusForbidden, "forbidden")
		httpErr.Title = "Access Denied"
		httpErr.ErrorCode = "AUTH_001"
		err := fmt.Errorf("middleware: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusForbidden, got.Code)
		require.Equal(t, "forbidden", got.Message)
		require.Equal(t, "Access Denied", got.Title)
		require.Equal(t, "AUTH_001", got.ErrorCode)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain error")
		require.Nil(t, internal.AsHTTPError(err))
	})

	t.Run("nil returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(nil))
	})
}

func TestNewHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("empty message falls back to status text", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusMethodNotAllowed, "")
		require.Equal(t, "Method Not Allowed", err.Error())
		require.Equal(t, err.StatusText(), err.Message)
	})

	t.Run("options are applied", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("db down")
		err := internal.ErrServiceUnavailable("try later",
			internal.WithTitle("Maintenance"),
			internal.WithDetail("scheduled"),
			internal.WithErrorCode("MAINT"),
			internal.WithRequestID("req-1"),
			internal.WithError(cause),
		)
		require.Equal(t, http.StatusServiceUnavailable, err.StatusCode())
		require.Equal(t, "Maintenance", err.Title)
		require.Equal(t, "scheduled", err.Detail)
		require.Equal(t, "MAINT", err.ErrorCode)
		require.Equal(t, "req-1", err.RequestID)
		require.ErrorIs(t, err, cause)
	})

	t.Run("constructors set status codes", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			err  *internal.HTTPError
			code int
		}{
			{internal.ErrBadRequest(""), http.StatusBadRequest},
			{internal.ErrUnauthorized(""), http.StatusUnauthorized},
			{internal.ErrForbidden(""), http.StatusForbidden},
			{internal.ErrNotFound(""), http.StatusNotFound},
			{internal.ErrMethodNotAllowed(""), http.StatusMethodNotAllowed},
			{internal.ErrConflict(""), http.StatusConflict},
			{internal.ErrUnprocessable(""), http.StatusUnprocessableEntity},
			{internal.ErrTooManyRequests(""), http.StatusTooManyRequests},
			{internal.ErrInternal(""), http.StatusInternalServerError},
			{internal.ErrServiceUnavailable(""), http.StatusServiceUnavailable},
		}
		for _, tt := range tests {
			require.Equal(t, tt.code, tt.err.Code)
			require.Equal(t, http.StatusText(tt.code), tt.err.Message)
		}
	})
}
