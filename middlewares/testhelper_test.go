package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/internal/slot"
)

// run sends req through an app with the given global slots and a catch-all
// route running h.
func run(t *testing.T, req *http.Request, h internal.HandlerFunc, slots ...slot.Loadable) *httptest.ResponseRecorder {
	t.Helper()

	return runApp(t, req, h, []internal.Option{internal.WithMiddleware(slots...)})
}

// runApp is run with full control over the app options.
func runApp(t *testing.T, req *http.Request, h internal.HandlerFunc, opts []internal.Option) *httptest.ResponseRecorder {
	t.Helper()

	r := router.New().All("/*", router.Config{Action: internal.Action(h)})
	app := internal.New(append(opts, internal.WithRouters(r))...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

// ok writes a fixed text body.
func ok(body string) internal.HandlerFunc {
	return func(c internal.Context) error {
		return c.String(http.StatusOK, body)
	}
}

// noContent answers 204.
func noContent(c internal.Context) error {
	return c.NoContent(http.StatusNoContent)
}
