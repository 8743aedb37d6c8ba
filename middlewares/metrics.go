package middlewares

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	Namespace string
	Subsystem string
	Buckets   []float64 // Duration histogram buckets in seconds
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metric namespace. Default: "husca".
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Namespace = ns
	}
}

// WithMetricsSubsystem sets the metric subsystem. Default: "http".
func WithMetricsSubsystem(sub string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Subsystem = sub
	}
}

// WithMetricsBuckets sets the duration histogram buckets.
func WithMetricsBuckets(buckets ...float64) MetricsOption {
	return func(cfg *MetricsConfig) {
		if len(buckets) > 0 {
			cfg.Buckets = buckets
		}
	}
}

// Metrics returns a slot recording Prometheus metrics for every request:
// a request counter and a duration histogram labelled by method and status,
// plus a gauge of requests in flight.
// Collectors are registered on reg; collectors already registered under the
// same names are reused, so several apps can share one registry.
// A nil reg means prometheus.DefaultRegisterer.
func Metrics(reg prometheus.Registerer, opts ...MetricsOption) *slot.Slot {
	cfg := &MetricsConfig{
		Namespace: "husca",
		Subsystem: "http",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	labels := []string{"method", "status"}
	requests := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "requests_total",
		Help:      "Total number of handled requests.",
	}, labels))
	duration := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "Time spent in the handler chain.",
		Buckets:   cfg.Buckets,
	}, labels))
	inFlight := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "requests_in_flight",
		Help:      "Requests currently in the handler chain.",
	}))

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		res, err := next()

		status := strconv.Itoa(responseStatus(c, res, err))
		requests.WithLabelValues(c.Method(), status).Inc()
		duration.WithLabelValues(c.Method(), status).Observe(time.Since(start).Seconds())

		return res, err
	})
}

// MetricsHandler returns a route action exposing the metrics gathered by g.
// A nil g means prometheus.DefaultGatherer.
func MetricsHandler(g prometheus.Gatherer) slot.Func {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return internal.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// register registers c, or returns the collector already registered in its place.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
