package hostrouter

import (
	"net/http"
	"slices"
	"strings"
)

// Routes maps host patterns to HTTP handlers.
// Exact: "api.example.com"
// Wildcard: "*.example.com"
type Routes map[string]http.Handler

// Router dispatches requests on their Host header.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by the domain after "*."
	fallback http.Handler
}

// New creates a host router. Requests matching no pattern go to fallback,
// or get a 404 when fallback is nil.
func New(routes Routes, fallback http.Handler) *Router {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}

	for pattern, handler := range routes {
		pattern = normalizeName(pattern)
		if pattern == "" || handler == nil {
			continue
		}
		if domain, ok := strings.CutPrefix(pattern, "*."); ok {
			r.wildcard[domain] = handler
		} else {
			r.exact[pattern] = handler
		}
	}

	return r
}

// Handler returns the handler serving host.
// An exact pattern wins over wildcards, and the wildcard with the longest
// domain wins over shorter ones: for "a.b.example.com", "*.b.example.com"
// is tried before "*.example.com".
func (r *Router) Handler(host string) http.Handler {
	host = normalizeHost(host)

	if h, ok := r.exact[host]; ok {
		return h
	}
	for rest := host; ; {
		_, domain, ok := strings.Cut(rest, ".")
		if !ok {
			break
		}
		if h, ok := r.wildcard[domain]; ok {
			return h
		}
		rest = domain
	}
	return r.fallback
}

// Patterns returns the registered patterns, sorted.
func (r *Router) Patterns() []string {
	out := make([]string, 0, len(r.exact)+len(r.wildcard))
	for p := range r.exact {
		out = append(out, p)
	}
	for d := range r.wildcard {
		out = append(out, "*."+d)
	}
	slices.Sort(out)
	return out
}

// ServeHTTP routes the request on its Host header.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Handler(req.Host).ServeHTTP(w, req)
}

// normalizeHost strips the port and the trailing dot and lowercases host.
// IPv6 literals keep their brackets.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if i := strings.LastIndexByte(host, ':'); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return normalizeName(host)
}

func normalizeName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}
