package middlewares

import (
	"errors"
	"log/slog"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Handler           func(c internal.Context, pe *PanicError) error // Maps the panic to the returned error
	StackSize         int                                            // Max logged stack trace size (default: 4096)
	DisablePrintStack bool                                           // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum logged stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverHandler sets the function that turns a recovered panic into the
// error handed to the error handler. Defaults to a 500 HTTPError.
func WithRecoverHandler(fn func(c internal.Context, pe *PanicError) error) RecoverOption {
	return func(cfg *RecoverConfig) {
		if fn != nil {
			cfg.Handler = fn
		}
	}
}

// Recover returns a slot that handles panics raised further down the chain.
// The composer already converts every panic into a *PanicError; Recover logs
// it once, with the stack, and replaces it with a plain 500 so the panic value
// never reaches the client.
// Request ID is automatically included via RequestIDExtractor() if configured.
func Recover(opts ...RecoverOption) *slot.Slot {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
		Handler: func(_ internal.Context, pe *PanicError) error {
			// The stack is logged here; keep it out of the error chain.
			return internal.ErrInternal("", internal.WithError(errors.New(pe.Error())))
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.StackSize <= 0 {
		cfg.StackSize = DefaultStackSize
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		res, err := next()
		pe, ok := slot.AsPanicError(err)
		if !ok {
			return res, err
		}

		attrs := []any{slog.Any("panic", pe.Value)}
		if !cfg.DisablePrintStack {
			stack := pe.Stack
			if len(stack) > cfg.StackSize {
				stack = stack[:cfg.StackSize]
			}
			attrs = append(attrs, slog.String("stack", string(stack)))
		}
		c.LogError("panic recovered", attrs...)

		return nil, cfg.Handler(c, pe)
	})
}
