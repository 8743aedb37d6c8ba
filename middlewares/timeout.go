package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Timeout time.Duration
	Message string
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutMessage sets the message of the 503 returned on timeout.
func WithTimeoutMessage(msg string) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.Message = msg
	}
}

// Timeout returns a slot that bounds the rest of the chain with a deadline.
// The request context seen downstream carries the deadline. When it passes
// first, the slot returns a 503 HTTPError wrapping a *TimeoutError.
//
// The downstream chain keeps running after a timeout. Long operations should
// watch c.Done() to stop early.
// Request ID is automatically included via RequestIDExtractor() if configured.
func Timeout(timeout time.Duration, opts ...TimeoutOption) *slot.Slot {
	cfg := &TimeoutConfig{
		Timeout: timeout,
		Message: "request timeout",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	type outcome struct {
		res any
		err error
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
		defer cancel()

		c.SetRequest(c.Request().WithContext(ctx))

		done := make(chan outcome, 1)
		go func() {
			res, err := next()
			done <- outcome{res: res, err: err}
		}()

		select {
		case out := <-done:
			return out.res, out.err
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ctx.Err()
			}
			c.LogWarn("request timeout", "timeout", cfg.Timeout.String())
			return nil, internal.ErrServiceUnavailable(cfg.Message,
				internal.WithError(&TimeoutError{Duration: cfg.Timeout}),
			)
		}
	})
}
