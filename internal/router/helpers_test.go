package router_test

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/dmitrymomot/husca/internal/slot"
)

// throwError is the error produced by fakeRequest.Throw.
type throwError struct {
	code int
	msg  string
}

func (e *throwError) Error() string { return fmt.Sprintf("%d %s", e.code, e.msg) }

// fakeRequest implements router.Request.
type fakeRequest struct {
	context.Context
	params  map[string]string
	headers http.Header
	path    string
	method  string
	trace   []string
}

func newFakeRequest(method, path string) *fakeRequest {
	return &fakeRequest{
		Context: context.Background(),
		method:  method,
		path:    path,
		headers: make(http.Header),
	}
}

func (r *fakeRequest) Pathname() string { return r.path }
func (r *fakeRequest) Method() string   { return r.method }

func (r *fakeRequest) SetParams(params map[string]string) {
	r.params = params
}

func (r *fakeRequest) SetHeader(name, value string) {
	r.headers.Set(name, value)
}

func (r *fakeRequest) Throw(code int, message string) error {
	return &throwError{code: code, msg: message}
}

// fakeCommand implements router.CommandRequest.
type fakeCommand struct {
	context.Context
	command string
	matched bool
	trace   []string
}

func newFakeCommand(command string) *fakeCommand {
	return &fakeCommand{Context: context.Background(), command: command}
}

func (c *fakeCommand) Command() string    { return c.command }
func (c *fakeCommand) SetCommandMatched() { c.matched = true }

// tracer is implemented by both fakes.
type tracer interface {
	add(mark string)
}

func (r *fakeRequest) add(mark string) { r.trace = append(r.trace, mark) }
func (c *fakeCommand) add(mark string) { c.trace = append(c.trace, mark) }

// mark returns a body recording name and calling next.
func mark(name string) slot.Func {
	return func(ctx context.Context, next slot.Next) (any, error) {
		ctx.(tracer).add(name)
		return next()
	}
}

// action returns a body recording name and returning it as the result.
func action(name string) slot.Func {
	return func(ctx context.Context, _ slot.Next) (any, error) {
		ctx.(tracer).add(name)
		return name, nil
	}
}

// dispatch runs s with a terminal that records "end".
func dispatch(s *slot.Slot, ctx context.Context) (any, error) {
	return slot.Compose([]*slot.Slot{s})(ctx, func() (any, error) {
		ctx.(tracer).add("end")
		return "end", nil
	})
}

func joined(trace []string) string {
	return strings.Join(trace, ",")
}

// runtimeCaller reports the file of its caller.
func runtimeCaller() (uintptr, string, int, bool) {
	return runtime.Caller(1)
}
