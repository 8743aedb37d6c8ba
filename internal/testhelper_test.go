package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/router"
)

// serve sends req through app and returns the recorded response.
func serve(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

// requestVia creates an App whose only route matches every path and runs fn.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	return requestRoute(t, "/*", req, opts, fn)
}

// requestViaParam creates an App with a single "/:id" route running fn.
func requestViaParam(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	return requestRoute(t, "/:id", req, opts, fn)
}

func requestRoute(t *testing.T, uri string, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	r := router.New().All(uri, router.Config{Action: internal.Action(func(c internal.Context) error {
		fn(c)
		return c.NoContent(http.StatusNoContent)
	})})
	opts = append(opts, internal.WithRouters(r))
	return serve(t, internal.New(opts...), req)
}

// text returns an action writing s as plain text.
func text(s string) func(c internal.Context) error {
	return func(c internal.Context) error {
		return c.String(http.StatusOK, s)
	}
}
