package router

import "errors"

// Sentinel errors.
var (
	// ErrInvalidPattern is returned for a route pattern that cannot be compiled.
	ErrInvalidPattern = errors.New("router: invalid route pattern")

	// ErrUnsupportedContext is returned when a router slot runs with a context
	// that does not expose the request or command it needs.
	ErrUnsupportedContext = errors.New("router: unsupported context")

	// ErrParserFrozen is returned when routers are registered after Freeze.
	ErrParserFrozen = errors.New("router: parser is frozen")
)
