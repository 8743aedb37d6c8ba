package internal

import (
	"net/http"

	"github.com/dmitrymomot/husca/pkg/hostrouter"
)

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
//
// Example:
//
//	api := husca.New(husca.WithRouters(api.Router))
//	website := husca.New(husca.WithRouters(pages.Router))
//
//	err := husca.Run(
//	    husca.Domain("api.acme.com", api),
//	    husca.Domain("*.acme.com", website),
//	    husca.Address(":8080"),
//	    husca.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	handler, err := cfg.handler()
	if err != nil {
		return err
	}
	return runServer(cfg.runtime(handler))
}

// handler builds the host router for the configured domains.
func (c *runConfig) handler() (http.Handler, error) {
	if len(c.domains) == 0 {
		if c.fallback == nil {
			return nil, ErrNoDomains
		}
		return c.fallback, nil
	}

	routes := make(hostrouter.Routes, len(c.domains))
	for pattern, app := range c.domains {
		routes[pattern] = app
	}

	var fallback http.Handler = http.NotFoundHandler()
	if c.fallback != nil {
		fallback = c.fallback
	}
	return hostrouter.New(routes, fallback), nil
}
