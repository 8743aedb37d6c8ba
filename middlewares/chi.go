package middlewares

import (
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// RealIP returns a slot that sets the request's RemoteAddr from the
// True-Client-IP, X-Real-IP or X-Forwarded-For headers.
// Only use it behind a proxy that sets those headers; clients can spoof them.
// Put it in front of RateLimit so buckets are keyed by the real client.
func RealIP() *slot.Slot {
	return internal.FromHTTP(middleware.RealIP)
}

// NoCache returns a slot that sets headers telling clients and proxies not
// to cache the response, and drops conditional request headers.
func NoCache() *slot.Slot {
	return internal.FromHTTP(middleware.NoCache)
}

// Heartbeat returns a slot that answers GET and HEAD requests for endpoint
// with 200 and a "." body. Other requests pass through.
func Heartbeat(endpoint string) *slot.Slot {
	return internal.FromHTTP(middleware.Heartbeat(endpoint))
}
