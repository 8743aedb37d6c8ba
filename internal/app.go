package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/logger"
)

// Default server timeouts (opinionated, overridable through RunOptions).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the web application shell.
// It owns the global slot set and a router parser, composes both into a
// single chain on the first request and adapts that chain to net/http.
type App struct {
	slots           *slot.Manager
	parser          *router.Parser[*router.Router]
	chain           slot.Composed
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	healthConfig    *healthConfig
	logger          *slog.Logger
	loader          router.Loader
	baseDomain      string
	middlewares     []slot.Loadable
	routers         []any
	routerPaths     []string
	mu              sync.Mutex
	once            sync.Once
	composed        bool
}

// New creates a new application with the given options.
// Global middleware options are loaded before any router option is parsed,
// so every router registered here is cut at the full global set.
// Invalid configuration panics.
//
// Example:
//
//	app := husca.New(
//	    husca.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    husca.WithRouters(api.Router, pages.Router),
//	)
func New(opts ...Option) *App {
	a := &App{
		slots:  slot.NewManager(slot.TargetWeb),
		logger: logger.NewNope(), // Default: noop logger (before options)
	}

	for _, opt := range opts {
		opt(a)
	}

	parserOpts := []router.ParserOption{router.WithParserLogger(a.logger)}
	if a.loader != nil {
		parserOpts = append(parserOpts, router.WithLoader(a.loader))
	}
	a.parser = router.NewParser[*router.Router](a.CutPoint, parserOpts...)

	a.slots = a.slots.Load(a.middlewares...)
	if a.healthConfig != nil {
		a.parser.ParseRouter(a.healthConfig.router(a.logger))
	}
	a.parser.ParseRouter(a.routers...)
	if len(a.routerPaths) > 0 {
		if err := a.parser.ParsePath(context.Background(), a.routerPaths...); err != nil {
			panic(fmt.Sprintf("husca: discover routers: %v", err))
		}
	}

	a.middlewares, a.routers, a.routerPaths = nil, nil, nil
	return a
}

// Use appends units to the global slot set.
// Routers registered afterwards skip them too. Panics once the app has
// started serving.
func (a *App) Use(items ...slot.Loadable) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.composed {
		panic(ErrAlreadyServing)
	}
	a.slots = a.slots.Load(items...)
	return a
}

// Mount registers routers with the app and returns how many were new.
// Values that are not routers are ignored; a router is only mounted once.
// Panics with ErrAlreadyServing once the app has started serving.
func (a *App) Mount(values ...any) int {
	n, err := a.parser.TryParseRouter(values...)
	if err != nil {
		panic(ErrAlreadyServing)
	}
	return n
}

// Discover loads the exports of every file matching the glob patterns and
// mounts the routers among them. Requests wait for running discoveries
// before the chain is composed. Returns ErrAlreadyServing once the app has
// started serving.
func (a *App) Discover(ctx context.Context, patterns ...string) error {
	err := a.parser.ParsePath(ctx, patterns...)
	if errors.Is(err, router.ErrParserFrozen) {
		return errors.Join(ErrAlreadyServing, err)
	}
	return err
}

// Slots returns the global slot set.
// Routers built from it with router.WithSlots skip the global part at dispatch.
func (a *App) Slots() *slot.Manager {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slots
}

// CutPoint returns the ID of the last global slot, or zero if there is none.
func (a *App) CutPoint() slot.ID {
	a.mu.Lock()
	last := a.slots.Last()
	a.mu.Unlock()
	if last == nil {
		return 0
	}
	return last.CreateID()
}

// Parser returns the router parser backing the app.
func (a *App) Parser() *router.Parser[*router.Router] {
	return a.parser
}

// Routes lists the routes of every mounted router, in dispatch order.
func (a *App) Routes() []router.RouteInfo {
	var out []router.RouteInfo
	for _, r := range a.parser.Mounted() {
		out = append(out, r.Routes()...)
	}
	return out
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Handler returns the app as an http.Handler.
func (a *App) Handler() http.Handler {
	return a
}

// ServeHTTP dispatches the request through the composed chain.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.compose)

	c := newContext(w, r, a)
	res, err := a.chain(c, nil)
	switch {
	case err != nil:
		a.handleError(c, err)
	case c.Written():
	case res != nil:
		if err := render(c, res); err != nil {
			a.handleError(c, err)
		}
	default:
		a.handleNotFound(c)
	}
}

// Run starts a single-domain HTTP server and blocks until shutdown.
// This is a convenience method for the common single-app case.
//
// Example:
//
//	app := husca.New(husca.WithRouters(pages.Router))
//	err := app.Run(":8080", husca.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(append([]RunOption{Address(addr)}, opts...)...)
	return runServer(cfg.runtime(a))
}

// compose waits for pending discoveries and freezes the chain.
func (a *App) compose() {
	<-a.parser.Settled()

	a.mu.Lock()
	a.composed = true
	chain := slices.Clone(a.slots.Slots())
	a.mu.Unlock()
	chain = append(chain, a.parser.Freeze()...)

	a.chain = slot.Compose(chain)
	a.logger.Debug("chain composed", slog.Int("slots", len(chain)))
}

// handleError hands the error to the configured error handler.
// The default handler runs when none is configured or the custom one fails.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		herr := a.errorHandler(c, err)
		if herr == nil || c.Written() {
			return
		}
		c.LogError("error handler failed", slog.Any("error", herr))
	}
	defaultErrorHandler(c, err)
}

func (a *App) handleNotFound(c Context) {
	if a.notFoundHandler == nil {
		a.handleError(c, ErrNotFound(""))
		return
	}
	if err := a.notFoundHandler(c); err != nil {
		a.handleError(c, err)
	}
}

// errorResponse is the JSON body written by the default error handler.
type errorResponse struct {
	Fields    map[string][]string `json:"fields,omitempty"`
	Error     string              `json:"error"`
	Code      string              `json:"code,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// fieldErrors is implemented by errors that report per-field messages,
// such as validation failures.
type fieldErrors interface {
	Fields() map[string][]string
}

// defaultErrorHandler maps *HTTPError to its status and anything else to 500.
// Server errors are logged; their cause never reaches the client.
func defaultErrorHandler(c Context, err error) {
	resp := errorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	code := http.StatusInternalServerError
	if he := AsHTTPError(err); he != nil {
		code = he.Code
		resp = errorResponse{Error: he.Error(), Code: he.ErrorCode, RequestID: he.RequestID}
		var fe fieldErrors
		if code < http.StatusInternalServerError && errors.As(err, &fe) {
			resp.Fields = fe.Fields()
		}
	}

	if code >= http.StatusInternalServerError {
		attrs := []any{slog.Any("error", err), slog.Int("status", code)}
		if pe, ok := slot.AsPanicError(err); ok {
			attrs = append(attrs, slog.String("stack", string(pe.Stack)))
		}
		c.LogError("request failed", attrs...)
	}

	if strings.Contains(c.Header("Accept"), "application/json") {
		_ = c.JSON(code, resp)
		return
	}
	_ = c.String(code, resp.Error)
}

// render writes a chain result that no slot wrote itself.
func render(c Context, res any) error {
	switch v := res.(type) {
	case string:
		return c.String(http.StatusOK, v)
	case []byte:
		return c.Blob(http.StatusOK, "application/octet-stream", v)
	case io.Reader:
		if rc, ok := v.(io.Closer); ok {
			defer rc.Close()
		}
		return c.Stream(http.StatusOK, "application/octet-stream", v)
	default:
		return c.JSON(http.StatusOK, v)
	}
}
