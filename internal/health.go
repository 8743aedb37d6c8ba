package internal

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/pkg/health"
)

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

func newHealthConfig() *healthConfig {
	return &healthConfig{
		checks:        make(health.Checks),
		livenessPath:  defaultLivenessPath,
		readinessPath: defaultReadinessPath,
	}
}

// router serves both probes as an ordinary web router.
func (c *healthConfig) router(log *slog.Logger) *router.Router {
	opts := []health.Option{health.WithLogger(log)}
	if c.timeout > 0 {
		opts = append(opts, health.WithTimeout(c.timeout))
	}

	r := router.New()
	r.Get(c.livenessPath, router.Config{Action: HTTPHandler(health.LivenessHandler())})
	r.Get(c.readinessPath, router.Config{Action: HTTPHandler(health.ReadinessHandler(c.checks, opts...))})
	return r
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessTimeout bounds the whole readiness probe.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		c.timeout = d
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	husca.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}
