package hostrouter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/pkg/hostrouter"
)

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	r := hostrouter.New(hostrouter.Routes{
		"api.example.com":      named("api"),
		"*.example.com":        named("tenant"),
		"*.eu.example.com":     named("eu"),
		" Admin.Example.COM. ": named("admin"),
		"":                     named("ignored"),
		"nil.example.com":      nil,
	}, named("fallback"))

	tests := []struct {
		host string
		want string
	}{
		{"api.example.com", "api"},
		{"API.example.com:8443", "api"},
		{"api.example.com.", "api"},
		{"admin.example.com", "admin"},
		{"acme.example.com", "tenant"},
		{"a.b.example.com", "tenant"},
		{"acme.eu.example.com", "eu"},
		{"eu.example.com", "tenant"},
		{"example.com", "fallback"},
		{"other.org", "fallback"},
		{"nil.example.com", "tenant"},
		{"[::1]:8080", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.want, w.Body.String())
		})
	}

	t.Run("patterns", func(t *testing.T) {
		t.Parallel()
		require.Equal(t,
			[]string{"*.eu.example.com", "*.example.com", "admin.example.com", "api.example.com"},
			r.Patterns())
	})
}

func TestRouterWithoutFallback(t *testing.T) {
	t.Parallel()

	r := hostrouter.New(hostrouter.Routes{"api.example.com": named("api")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "www.example.com"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDomain(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com":      "example.com",
		"Example.COM:8080": "example.com",
		"[::1]:8080":       "[::1]",
		"[::1]":            "[::1]",
		"127.0.0.1:3000":   "127.0.0.1",
		"example.com.":     "example.com",
	}
	for host, want := range tests {
		t.Run(host, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = host
			require.Equal(t, want, hostrouter.GetDomain(req))
		})
	}
}

func TestGetSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		base string
		want string
	}{
		{"foo.example.com", "example.com", "foo"},
		{"bar.foo.example.com:8080", "example.com", "bar.foo"},
		{"FOO.Example.com", "EXAMPLE.com", "foo"},
		{"example.com", "example.com", ""},
		{"notexample.com", "example.com", ""},
		{"foo.other.com", "example.com", ""},
		{"foo.example.com", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.host+"/"+tt.base, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			require.Equal(t, tt.want, hostrouter.GetSubdomain(req, tt.base))
		})
	}
}
