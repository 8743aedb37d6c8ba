package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/husca/internal/slot"
)

// Next resumes the chain after the current slot.
type Next = slot.Next

// MiddlewareFunc is the body of a typed web slot.
// It receives the request context and the continuation of the chain.
//
// Example:
//
//	func Auth(c husca.Context, next husca.Next) (any, error) {
//	    if c.Header("Authorization") == "" {
//	        return nil, husca.ErrUnauthorized("")
//	    }
//	    return next()
//	}
type MiddlewareFunc func(c Context, next Next) (any, error)

// HandlerFunc is the signature for route actions.
// It receives a Context and returns an error.
// Returning a non-nil error hands the request to the error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// It is the decorator form of a slot; Adapt turns it into one.
//
// Example:
//
//	func Auth(next husca.HandlerFunc) husca.HandlerFunc {
//	    return func(c husca.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.Redirect(302, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from the chain.
type ErrorHandler func(Context, error) error

// CommandFunc is the body of a typed command slot.
type CommandFunc func(c ConsoleContext, next Next) (any, error)

// CommandHandlerFunc is the signature for command actions.
type CommandHandlerFunc func(c ConsoleContext) error

// Web creates a web slot from a typed body.
func Web(fn MiddlewareFunc) *slot.Slot {
	return slot.Web(webFunc(fn))
}

// Command creates a command slot from a typed body.
func Command(fn CommandFunc) *slot.Slot {
	return slot.Command(commandFunc(fn))
}

// Action adapts a route action to a slot body.
// The action terminates the chain: the continuation is never called.
func Action(h HandlerFunc) slot.Func {
	return webFunc(func(c Context, _ Next) (any, error) {
		return nil, h(c)
	})
}

// CommandAction adapts a command action to a slot body.
func CommandAction(h CommandHandlerFunc) slot.Func {
	return commandFunc(func(c ConsoleContext, _ Next) (any, error) {
		return nil, h(c)
	})
}

// Adapt turns a decorator-style Middleware into a web slot.
// The innermost HandlerFunc resumes the chain and keeps its result,
// so results produced downstream survive the decorator.
func Adapt(mw Middleware) *slot.Slot {
	return Web(func(c Context, next Next) (any, error) {
		var (
			res    any
			called bool
		)
		h := mw(func(Context) error {
			called = true
			var err error
			res, err = next()
			return err
		})
		if err := h(c); err != nil {
			return nil, err
		}
		if !called {
			return nil, nil
		}
		return res, nil
	})
}

// HTTPHandler adapts a plain http.Handler to a slot body,
// so existing handlers can serve as route actions.
func HTTPHandler(h http.Handler) slot.Func {
	return webFunc(func(c Context, _ Next) (any, error) {
		h.ServeHTTP(c.Response(), c.Request())
		return nil, nil
	})
}

// FromHTTP adapts net/http middleware (chi middleware included) to a web slot.
// Request and response writer changes made by the middleware are visible to
// the rest of the chain. When the middleware does not call its next handler,
// the chain stops there.
func FromHTTP(mw func(http.Handler) http.Handler) *slot.Slot {
	return Web(func(c Context, next Next) (any, error) {
		var (
			res any
			err error
		)
		r, w := c.Request(), c.Response()
		h := mw(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			c.SetRequest(req)
			c.SetResponse(rw)
			res, err = next()
		}))
		h.ServeHTTP(w, r)
		c.SetResponse(w)
		return res, err
	})
}

func webFunc(fn MiddlewareFunc) slot.Func {
	return func(ctx context.Context, next slot.Next) (any, error) {
		c, ok := ctx.(Context)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrContextType, ctx)
		}
		return fn(c, next)
	}
}

func commandFunc(fn CommandFunc) slot.Func {
	return func(ctx context.Context, next slot.Next) (any, error) {
		c, ok := ctx.(ConsoleContext)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrContextType, ctx)
		}
		return fn(c, next)
	}
}
