package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/internal"
)

func TestParam(t *testing.T) {
	t.Parallel()

	get := func(t *testing.T, path string, fn func(c internal.Context)) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := requestViaParam(t, req, nil, fn)
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		get(t, "/hello", func(c internal.Context) {
			require.Equal(t, "hello", internal.Param[string](c, "id"))
		})
	})

	t.Run("int", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			path string
			want int
		}{
			{"valid", "/42", 42},
			{"negative", "/-7", -7},
			{"invalid", "/abc", 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				get(t, tt.path, func(c internal.Context) {
					require.Equal(t, tt.want, internal.Param[int](c, "id"))
				})
			})
		}
	})

	t.Run("int64 and uint64", func(t *testing.T) {
		t.Parallel()
		get(t, "/9223372036854775807", func(c internal.Context) {
			require.Equal(t, int64(9223372036854775807), internal.Param[int64](c, "id"))
			require.Equal(t, uint64(9223372036854775807), internal.Param[uint64](c, "id"))
		})
		get(t, "/-1", func(c internal.Context) {
			require.Zero(t, internal.Param[uint](c, "id"))
		})
	})

	t.Run("float64", func(t *testing.T) {
		t.Parallel()
		get(t, "/3.14", func(c internal.Context) {
			require.InDelta(t, 3.14, internal.Param[float64](c, "id"), 0.0001)
		})
	})

	t.Run("bool", func(t *testing.T) {
		t.Parallel()
		get(t, "/true", func(c internal.Context) {
			require.True(t, internal.Param[bool](c, "id"))
		})
		get(t, "/nope", func(c internal.Context) {
			require.False(t, internal.Param[bool](c, "id"))
		})
	})

	t.Run("percent-encoded value is decoded", func(t *testing.T) {
		t.Parallel()
		get(t, "/a%20b", func(c internal.Context) {
			require.Equal(t, "a b", internal.Param[string](c, "id"))
		})
	})

	t.Run("missing param returns zero value", func(t *testing.T) {
		t.Parallel()
		get(t, "/1", func(c internal.Context) {
			require.Zero(t, internal.Param[int](c, "missing"))
			require.Empty(t, internal.Param[string](c, "missing"))
		})
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	query := func(t *testing.T, rawQuery string, fn func(c internal.Context)) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
		w := requestVia(t, req, nil, fn)
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	t.Run("typed values", func(t *testing.T) {
		t.Parallel()
		query(t, "s=hi&n=5&f=1.5&b=1", func(c internal.Context) {
			require.Equal(t, "hi", internal.Query[string](c, "s"))
			require.Equal(t, 5, internal.Query[int](c, "n"))
			require.InDelta(t, 1.5, internal.Query[float64](c, "f"), 0.0001)
			require.True(t, internal.Query[bool](c, "b"))
		})
	})

	t.Run("invalid returns zero value", func(t *testing.T) {
		t.Parallel()
		query(t, "n=five", func(c internal.Context) {
			require.Zero(t, internal.Query[int](c, "n"))
		})
	})
}

func TestQueryDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawQuery string
		want     int
	}{
		{"returns default when missing", "", 10},
		{"returns default when empty value", "page=", 10},
		{"returns default on invalid when present", "page=x", 10},
		{"returns parsed value when present", "page=3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.rawQuery, nil)
			requestVia(t, req, nil, func(c internal.Context) {
				require.Equal(t, tt.want, internal.QueryDefault(c, "page", 10))
			})
		})
	}
}

type ctxKey struct{}

type account struct {
	ID   string
	Name string
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	t.Run("returns correct typed value when key exists", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.Set(ctxKey{}, "value")
			require.Equal(t, "value", internal.ContextValue[string](c, ctxKey{}))
		})
	})

	t.Run("returns zero value for wrong type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.Set(ctxKey{}, 42)
			require.Empty(t, internal.ContextValue[string](c, ctxKey{}))
		})
	})

	t.Run("reads values from the request context", func(t *testing.T) {
		t.Parallel()
		ctx := context.WithValue(context.Background(), ctxKey{}, account{ID: "1", Name: "Ann"})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			require.Equal(t, account{ID: "1", Name: "Ann"}, internal.ContextValue[account](c, ctxKey{}))
		})
	})

	t.Run("returns zero struct for missing custom type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.Equal(t, account{}, internal.ContextValue[account](c, ctxKey{}))
		})
	})
}

func TestBodyAs(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		_, ok := internal.BodyAs[*account](c)
		require.False(t, ok)

		c.SetBody(&account{ID: "7"})
		got, ok := internal.BodyAs[*account](c)
		require.True(t, ok)
		require.Equal(t, "7", got.ID)

		_, ok = internal.BodyAs[map[string]any](c)
		require.False(t, ok)
	})
}
