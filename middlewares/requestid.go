package middlewares

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/logger"
)

type requestIDKey struct{}

// MaxRequestIDLength bounds the length of request IDs accepted from clients.
const MaxRequestIDLength = 128

// DefaultRequestIDHeaders are the request headers searched, in order, for an
// upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Headers        []string      // searched in order for an upstream ID
	Generator      func() string // creates IDs when none is accepted
	ResponseHeader string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers searched for an upstream ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Headers = headers }
}

// WithRequestIDGenerator replaces the UUIDv4 generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Generator = gen }
}

// WithRequestIDResponseHeader sets the response header carrying the ID.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.ResponseHeader = header }
}

// RequestID returns a slot that assigns an ID to each request.
//
// An upstream ID is accepted from the first header in Headers holding one of
// at most MaxRequestIDLength printable ASCII characters; otherwise an ID is
// generated. The ID is stored on the context, echoed in the response header
// and copied into downstream HTTPErrors that carry none.
func RequestID(opts ...RequestIDOption) *slot.Slot {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sources := make([]internal.ExtractorSource, 0, len(cfg.Headers))
	for _, h := range cfg.Headers {
		sources = append(sources, acceptedID(internal.FromHeader(h)))
	}
	upstream := internal.NewExtractor(sources...)

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		id, ok := upstream.Extract(c)
		if !ok {
			id = cfg.Generator()
		}

		c.Set(requestIDKey{}, id)
		c.SetHeader(cfg.ResponseHeader, id)

		res, err := next()
		if he := internal.AsHTTPError(err); he != nil && he.RequestID == "" {
			he.RequestID = id
		}
		return res, err
	})
}

// acceptedID filters src down to IDs safe to log and echo.
func acceptedID(src internal.ExtractorSource) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		v, ok := src(c)
		if !ok || len(v) > MaxRequestIDLength {
			return "", false
		}
		for i := range len(v) {
			if v[i] < 0x21 || v[i] > 0x7e {
				return "", false
			}
		}
		return v, true
	}
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records of requests that have one.
//
//	husca.WithLogger("api", middlewares.RequestIDExtractor())
func RequestIDExtractor() logger.ContextExtractor {
	return logger.FromContextKey(requestIDKey{}, "request_id")
}
