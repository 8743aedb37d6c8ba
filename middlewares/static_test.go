package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/middlewares"
)

func assets() fstest.MapFS {
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return fstest.MapFS{
		"index.html":      {Data: []byte("<h1>home</h1>"), ModTime: mod},
		"css/site.css":    {Data: []byte("body{}"), ModTime: mod},
		"docs/index.html": {Data: []byte("<h1>docs</h1>"), ModTime: mod},
		"empty/.keep":     {Data: nil, ModTime: mod},
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		opts   []middlewares.StaticOption
		code   int
		body   string
		ctype  string
	}{
		{name: "file", method: http.MethodGet, path: "/css/site.css", code: http.StatusOK, body: "body{}", ctype: "text/css; charset=utf-8"},
		{name: "root index", method: http.MethodGet, path: "/", code: http.StatusOK, body: "<h1>home</h1>", ctype: "text/html; charset=utf-8"},
		{name: "directory index", method: http.MethodGet, path: "/docs/", code: http.StatusOK, body: "<h1>docs</h1>"},
		{name: "head", method: http.MethodHead, path: "/css/site.css", code: http.StatusOK, body: ""},
		{name: "missing falls through", method: http.MethodGet, path: "/nope.js", code: http.StatusOK, body: "app"},
		{name: "directory without index falls through", method: http.MethodGet, path: "/empty", code: http.StatusOK, body: "app"},
		{name: "post falls through", method: http.MethodPost, path: "/css/site.css", code: http.StatusOK, body: "app"},
		{name: "traversal is cleaned", method: http.MethodGet, path: "/../css/site.css", code: http.StatusOK, body: "body{}"},
		{
			name: "prefix", method: http.MethodGet, path: "/assets/css/site.css",
			opts: []middlewares.StaticOption{middlewares.WithStaticPrefix("assets")},
			code: http.StatusOK, body: "body{}",
		},
		{
			name: "outside prefix falls through", method: http.MethodGet, path: "/css/site.css",
			opts: []middlewares.StaticOption{middlewares.WithStaticPrefix("/assets/")},
			code: http.StatusOK, body: "app",
		},
		{
			name: "prefix needs a segment boundary", method: http.MethodGet, path: "/assetsx/css/site.css",
			opts: []middlewares.StaticOption{middlewares.WithStaticPrefix("/assets")},
			code: http.StatusOK, body: "app",
		},
		{
			name: "index disabled", method: http.MethodGet, path: "/",
			opts: []middlewares.StaticOption{middlewares.WithStaticIndex("")},
			code: http.StatusOK, body: "app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.URL.Path = tt.path

			w := run(t, req, ok("app"), middlewares.Static(assets(), tt.opts...))

			require.Equal(t, tt.code, w.Code)
			require.Equal(t, tt.body, w.Body.String())
			if tt.ctype != "" {
				require.Equal(t, tt.ctype, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestStaticCaching(t *testing.T) {
	t.Parallel()

	t.Run("max age", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/css/site.css", nil)
		w := run(t, req, ok("app"), middlewares.Static(assets(), middlewares.WithStaticMaxAge(3600)))

		require.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
		require.NotEmpty(t, w.Header().Get("Last-Modified"))
	})

	t.Run("if-modified-since", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/css/site.css", nil)
		req.Header.Set("If-Modified-Since", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w := run(t, req, ok("app"), middlewares.Static(assets()))

		require.Equal(t, http.StatusNotModified, w.Code)
	})

	t.Run("nil fs panics", func(t *testing.T) {
		t.Parallel()
		require.PanicsWithError(t, middlewares.ErrNilFS.Error(), func() {
			middlewares.Static(nil)
		})
	})
}
