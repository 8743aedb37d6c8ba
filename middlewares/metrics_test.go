package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/middlewares"
)

// scrape returns the text exposition of reg.
func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()

	w := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("counts requests by method and status", func(t *testing.T) {
		t.Parallel()
		reg := prometheus.NewRegistry()
		mw := middlewares.Metrics(reg)

		run(t, httptest.NewRequest(http.MethodGet, "/", nil), ok("a"), mw)
		run(t, httptest.NewRequest(http.MethodGet, "/", nil), ok("b"), mw)
		run(t, httptest.NewRequest(http.MethodPost, "/", nil), func(internal.Context) error {
			return internal.ErrConflict("")
		}, mw)

		out := scrape(t, reg)
		require.Contains(t, out, `husca_http_requests_total{method="GET",status="200"} 2`)
		require.Contains(t, out, `husca_http_requests_total{method="POST",status="409"} 1`)
		require.Contains(t, out, `husca_http_request_duration_seconds_count{method="GET",status="200"} 2`)
		require.Contains(t, out, `husca_http_request_duration_seconds_count{method="POST",status="409"} 1`)
	})

	t.Run("in flight returns to zero", func(t *testing.T) {
		t.Parallel()
		reg := prometheus.NewRegistry()
		mw := middlewares.Metrics(reg, middlewares.WithMetricsNamespace("shop"), middlewares.WithMetricsSubsystem("web"))

		run(t, httptest.NewRequest(http.MethodGet, "/", nil), ok("a"), mw)

		out := scrape(t, reg)
		require.Contains(t, out, "shop_web_requests_in_flight 0")
		require.Contains(t, out, "shop_web_requests_total")
	})

	t.Run("collectors are reused on one registry", func(t *testing.T) {
		t.Parallel()
		reg := prometheus.NewRegistry()
		a := middlewares.Metrics(reg)
		b := middlewares.Metrics(reg, middlewares.WithMetricsBuckets(0.1, 1))

		run(t, httptest.NewRequest(http.MethodGet, "/", nil), ok("a"), a)
		run(t, httptest.NewRequest(http.MethodGet, "/", nil), ok("b"), b)

		require.Contains(t, scrape(t, reg), `husca_http_requests_total{method="GET",status="200"} 2`)
	})
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := router.New().
		Get("/metrics", router.Config{Action: middlewares.MetricsHandler(reg)}).
		Get("/", router.Config{Action: internal.Action(ok("home"))})
	app := internal.New(internal.WithMiddleware(middlewares.Metrics(reg)), internal.WithRouters(r))

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `husca_http_requests_total{method="GET",status="200"} 1`)
}
