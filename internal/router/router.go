package router

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/husca/internal/slot"
)

// Config declares what a route runs: optional slots followed by an optional action.
type Config struct {
	// Slots are loaded in front of the action. Accepts a *slot.Slot or a *slot.Manager.
	Slots slot.Loadable

	// Action is the final handler of the route.
	Action slot.Func
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Methods []string
	Paths   []string
}

// Router is a group of web routes sharing a prefix and group slots.
// Routes are registered during setup; the router compiles into a single slot
// with GenerateSlot.
type Router struct {
	slots          *slot.Manager
	prefix         string
	routes         []*Route
	methodMismatch bool
}

// Option configures a Router.
type Option func(*Router)

// WithPrefix sets the path prefix of every route.
func WithPrefix(prefix string) Option {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// WithSlots sets the group slots run before every route of the router.
// The set is usually derived from the application's global set, see
// CutGlobalSlots. It panics on a command set.
func WithSlots(set *slot.Manager) Option {
	return func(r *Router) {
		if set == nil {
			return
		}
		r.slots = slot.NewManager(slot.TargetWeb).Load(set)
	}
}

// WithMethodMismatch makes the router fail with 405 when a path matches but
// the method does not, instead of falling through.
func WithMethodMismatch() Option {
	return func(r *Router) {
		r.methodMismatch = true
	}
}

// New creates a web router.
//
// Example:
//
//	users := router.New(router.WithPrefix("/users")).
//	    Get("/:id", router.Config{Action: showUser}).
//	    Post("/", router.Config{Slots: auth, Action: createUser})
func New(opts ...Option) *Router {
	r := &Router{slots: slot.NewManager(slot.TargetWeb)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers cfg for every uri and method. An empty methods list
// matches any method. It panics on a malformed pattern.
func (r *Router) Handle(methods, uris []string, cfg Config) *Router {
	chain := slot.NewManager(slot.TargetWeb).Load(cfg.Slots)
	if cfg.Action != nil {
		chain = chain.Load(slot.Web(cfg.Action))
	}

	route, err := NewRoute(r.prefix, uris, methods, chain)
	if err != nil {
		panic(err)
	}
	r.routes = append(r.routes, route)
	return r
}

// Get registers a GET route. HEAD requests are routed to it as well.
func (r *Router) Get(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodGet, http.MethodHead}, []string{uri}, cfg)
}

// Post registers a POST route.
func (r *Router) Post(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodPost}, []string{uri}, cfg)
}

// Put registers a PUT route.
func (r *Router) Put(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodPut}, []string{uri}, cfg)
}

// Patch registers a PATCH route.
func (r *Router) Patch(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodPatch}, []string{uri}, cfg)
}

// Delete registers a DELETE route.
func (r *Router) Delete(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodDelete}, []string{uri}, cfg)
}

// Head registers a HEAD route.
func (r *Router) Head(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodHead}, []string{uri}, cfg)
}

// Options registers an OPTIONS route.
func (r *Router) Options(uri string, cfg Config) *Router {
	return r.Handle([]string{http.MethodOptions}, []string{uri}, cfg)
}

// All registers a route matching any method.
func (r *Router) All(uri string, cfg Config) *Router {
	return r.Handle(nil, []string{uri}, cfg)
}

// Prefix returns the router's path prefix.
func (r *Router) Prefix() string {
	return r.prefix
}

// Routes lists the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, len(r.routes))
	for i, route := range r.routes {
		out[i] = RouteInfo{Methods: route.Methods(), Paths: route.Paths()}
	}
	return out
}

// compiledRoute pairs a route with its composed chain.
type compiledRoute struct {
	route *Route
	run   slot.Composed
}

// GenerateSlot compiles the router into one web slot.
// cut is the ID of the last global slot; group slots up to and including it
// are not run again.
//
// At dispatch the first route (in registration order) matching the request
// runs with the outer next as its terminal. Nothing else is tried once a
// route matched.
func (r *Router) GenerateSlot(cut slot.ID) *slot.Slot {
	group := CutGlobalSlots(r.slots, cut)

	compiled := make([]compiledRoute, len(r.routes))
	for i, route := range r.routes {
		chain := make([]*slot.Slot, 0, len(group)+route.slots.Len())
		chain = append(chain, group...)
		chain = append(chain, route.slots.Slots()...)
		compiled[i] = compiledRoute{route: route, run: slot.Compose(chain)}
	}
	mismatch := r.methodMismatch

	return slot.Web(func(ctx context.Context, next slot.Next) (any, error) {
		req, ok := ctx.(Request)
		if !ok {
			return nil, fmt.Errorf("%w: %T does not implement router.Request", ErrUnsupportedContext, ctx)
		}

		pathname, method := req.Pathname(), req.Method()
		for _, c := range compiled {
			if params, ok := c.route.Match(pathname, method); ok {
				req.SetParams(params)
				return c.run(ctx, next)
			}
		}

		if mismatch {
			var allowed []string
			for _, c := range compiled {
				if c.route.MatchPathname(pathname) {
					for _, m := range c.route.methods {
						if !slices.Contains(allowed, m) {
							allowed = append(allowed, m)
						}
					}
				}
			}
			if len(allowed) > 0 {
				if hs, ok := ctx.(headerSetter); ok {
					hs.SetHeader("Allow", strings.Join(allowed, ", "))
				}
				return nil, req.Throw(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			}
		}

		return next()
	})
}
