package router

import (
	"slices"
	"strings"

	"github.com/dmitrymomot/husca/internal/slot"
)

// Route is the matcher for one group of URIs and methods plus the chain
// that handles them. It is immutable once created.
type Route struct {
	slots    *slot.Manager
	methods  []string
	patterns []*pattern
}

// NewRoute compiles uris under prefix. An empty methods list matches any method.
func NewRoute(prefix string, uris, methods []string, slots *slot.Manager) (*Route, error) {
	r := &Route{
		slots:    slots,
		methods:  make([]string, 0, len(methods)),
		patterns: make([]*pattern, 0, len(uris)),
	}
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !slices.Contains(r.methods, m) {
			r.methods = append(r.methods, m)
		}
	}
	for _, uri := range uris {
		p, err := compilePattern(normalizePath(prefix, uri))
		if err != nil {
			return nil, err
		}
		r.patterns = append(r.patterns, p)
	}
	return r, nil
}

// Methods returns the accepted methods.
func (r *Route) Methods() []string {
	return slices.Clone(r.methods)
}

// Paths returns the normalized URIs in declaration order.
func (r *Route) Paths() []string {
	out := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		out[i] = p.path
	}
	return out
}

// Slots returns the route's own chain.
func (r *Route) Slots() *slot.Manager {
	return r.slots
}

// Match reports whether the route handles pathname for method and returns
// the decoded parameters. URIs declared later take precedence.
func (r *Route) Match(pathname, method string) (map[string]string, bool) {
	if len(r.methods) > 0 && !slices.Contains(r.methods, method) {
		return nil, false
	}
	for i := len(r.patterns) - 1; i >= 0; i-- {
		if params, ok := r.patterns[i].match(pathname); ok {
			return params, true
		}
	}
	return nil, false
}

// MatchPathname reports whether any URI of the route matches pathname,
// regardless of method.
func (r *Route) MatchPathname(pathname string) bool {
	for i := len(r.patterns) - 1; i >= 0; i-- {
		if r.patterns[i].matchPath(pathname) {
			return true
		}
	}
	return false
}
