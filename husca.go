package husca

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/health"
	"github.com/dmitrymomot/husca/pkg/logger"
)

// Type aliases - public API
type (
	// App is the web application shell. It composes global slots with the
	// slots generated by its routers and serves them over net/http.
	App = internal.App

	// Console is the console application shell. It dispatches argv through
	// command slots and commanders.
	Console = internal.Console

	// Context is the dispatch context of web slots.
	Context = internal.Context

	// ConsoleContext is the dispatch context of command slots.
	ConsoleContext = internal.ConsoleContext

	// Next resumes the chain and returns the downstream result.
	Next = slot.Next

	// Slot is a single handler unit.
	Slot = slot.Slot

	// SlotFunc is the untyped body of a slot.
	SlotFunc = slot.Func

	// SlotManager is an ordered set of slots of one target.
	SlotManager = slot.Manager

	// Loadable is anything a slot set accepts: a *Slot or a *SlotManager.
	Loadable = slot.Loadable

	// Target is the execution domain of a slot.
	Target = slot.Target

	// Condition describes when a slot is skipped.
	Condition = slot.Condition

	// PanicError is the error a dispatch fails with when a body panics.
	PanicError = slot.PanicError

	// Router is a group of web routes.
	Router = router.Router

	// RouterOption configures a Router.
	RouterOption = router.Option

	// Commander is a group of console commands.
	Commander = router.Commander

	// CommanderOption configures a Commander.
	CommanderOption = router.CommanderOption

	// RouteConfig holds the slots and action of a route or command.
	RouteConfig = router.Config

	// HandlerFunc is the signature of route actions.
	HandlerFunc = internal.HandlerFunc

	// MiddlewareFunc is the signature of typed web slot bodies.
	MiddlewareFunc = internal.MiddlewareFunc

	// CommandFunc is the signature of typed command slot bodies.
	CommandFunc = internal.CommandFunc

	// CommandHandlerFunc is the signature of command actions.
	CommandHandlerFunc = internal.CommandHandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from the chain.
	ErrorHandler = internal.ErrorHandler

	// Option configures the web application.
	Option = internal.Option

	// ConsoleOption configures the console application.
	ConsoleOption = internal.ConsoleOption

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error carrying an HTTP status.
	HTTPError = internal.HTTPError

	// Extractor reads a value from the first request source that has it.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value from the request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor
)

// Slot targets.
const (
	TargetWeb     = slot.TargetWeb
	TargetCommand = slot.TargetCommand
	TargetEither  = slot.TargetEither
)

// Constructors

// New creates a web application with the given options.
//
// Example:
//
//	app := husca.New(
//	    husca.WithLogger("api", middlewares.RequestIDExtractor()),
//	    husca.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    husca.WithRouters(routes.Users, routes.Billing),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewConsole creates a console application with the given options.
//
// Example:
//
//	console := husca.NewConsole(husca.WithCommanders(commands.DB))
//	os.Exit(console.Exec(context.Background(), os.Args[1:]))
func NewConsole(opts ...ConsoleOption) *Console {
	return internal.NewConsole(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
//
// Example:
//
//	err := husca.Run(
//	    husca.Domain("api.acme.com", api),
//	    husca.Domain("*.acme.com", website),
//	    husca.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// Slots

// Web creates a web slot from a typed body.
//
// Example:
//
//	timing := husca.Web(func(c husca.Context, next husca.Next) (any, error) {
//	    start := time.Now()
//	    defer func() { c.LogInfo("handled", "took", time.Since(start)) }()
//	    return next()
//	})
func Web(fn MiddlewareFunc) *Slot {
	return internal.Web(fn)
}

// Command creates a command slot from a typed body.
func Command(fn CommandFunc) *Slot {
	return internal.Command(fn)
}

// Action turns a route handler into the terminal body of a route.
func Action(h HandlerFunc) SlotFunc {
	return internal.Action(h)
}

// CommandAction turns a command handler into the terminal body of a command.
func CommandAction(h CommandHandlerFunc) SlotFunc {
	return internal.CommandAction(h)
}

// CreateSlot creates an untyped slot for target.
// It panics when fn is nil or target is unknown.
func CreateSlot(target Target, fn SlotFunc) *Slot {
	return slot.New(target, fn)
}

// ManageSlots creates an empty slot set for target.
func ManageSlots(target Target) *SlotManager {
	return slot.NewManager(target)
}

// Adapt turns a decorator-style Middleware into a web slot.
func Adapt(mw Middleware) *Slot {
	return internal.Adapt(mw)
}

// FromHTTP adapts net/http middleware, chi middleware included, to a web slot.
//
// Example:
//
//	husca.WithMiddleware(husca.FromHTTP(middleware.RealIP))
func FromHTTP(mw func(http.Handler) http.Handler) *Slot {
	return internal.FromHTTP(mw)
}

// HTTPHandler serves a plain http.Handler as a route action.
func HTTPHandler(h http.Handler) SlotFunc {
	return internal.HTTPHandler(h)
}

// Routers

// NewRouter creates a web router.
//
// Example:
//
//	var Users = husca.Export(husca.NewRouter(husca.WithPrefix("/users")).
//	    Get("/:id", husca.RouteConfig{Action: husca.Action(showUser)}))
func NewRouter(opts ...RouterOption) *Router {
	return router.New(opts...)
}

// NewCommander creates a console commander.
func NewCommander(opts ...CommanderOption) *Commander {
	return router.NewCommander(opts...)
}

// WithPrefix mounts every route of a router under prefix.
func WithPrefix(prefix string) RouterOption {
	return router.WithPrefix(prefix)
}

// WithSlots runs set before the slots of every route in a router.
func WithSlots(set *SlotManager) RouterOption {
	return router.WithSlots(set)
}

// WithMethodMismatch makes a router answer 405 when a path matches under
// another method.
func WithMethodMismatch() RouterOption {
	return router.WithMethodMismatch()
}

// WithCommandPrefix prepends prefix to every command name of a commander.
func WithCommandPrefix(prefix string) CommanderOption {
	return router.WithCommandPrefix(prefix)
}

// WithCommandSlots runs set before the slots of every command in a commander.
func WithCommandSlots(set *SlotManager) CommanderOption {
	return router.WithCommandSlots(set)
}

// Export records v under the calling source file, so WithRouterPaths and
// WithCommanderPaths can find it, and returns v.
func Export[T any](v T) T {
	return router.ExportFrom(1, v)
}

// App options

// WithMiddleware loads global slots. They run before every route, in order.
func WithMiddleware(items ...Loadable) Option {
	return internal.WithMiddleware(items...)
}

// WithRouters mounts routers. Values that are not *Router are ignored.
func WithRouters(values ...any) Option {
	return internal.WithRouters(values...)
}

// WithRouterPaths mounts the routers exported from files matching the glob
// patterns. "**" matches any number of directories.
func WithRouterPaths(patterns ...string) Option {
	return internal.WithRouterPaths(patterns...)
}

// WithErrorHandler sets a custom handler for errors returned by the chain.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom handler for requests no route answered.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithLogger creates a logger with a component name and optional extractors.
//
// Example:
//
//	husca.WithLogger("api", middlewares.RequestIDExtractor())
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithBaseDomain configures the base domain used by Context.Subdomain.
func WithBaseDomain(domain string) Option {
	return internal.WithBaseDomain(domain)
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	husca.WithHealthChecks(
//	    husca.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health check options

// WithReadinessTimeout bounds the time all readiness checks may take.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return internal.WithReadinessTimeout(d)
}

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Console options

// WithCommandMiddleware loads global command slots.
func WithCommandMiddleware(items ...Loadable) ConsoleOption {
	return internal.WithCommandMiddleware(items...)
}

// WithCommanders mounts commanders. Values that are not *Commander are ignored.
func WithCommanders(values ...any) ConsoleOption {
	return internal.WithCommanders(values...)
}

// WithCommanderPaths mounts the commanders exported from files matching the
// glob patterns.
func WithCommanderPaths(patterns ...string) ConsoleOption {
	return internal.WithCommanderPaths(patterns...)
}

// WithConsoleLogger sets the logger available to commands.
func WithConsoleLogger(l *slog.Logger) ConsoleOption {
	return internal.WithConsoleLogger(l)
}

// WithOutput sets the writer for command output. Defaults to os.Stdout.
func WithOutput(w io.Writer) ConsoleOption {
	return internal.WithOutput(w)
}

// WithErrorOutput sets the writer for command diagnostics. Defaults to os.Stderr.
func WithErrorOutput(w io.Writer) ConsoleOption {
	return internal.WithErrorOutput(w)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run after the port is bound and
// before the server accepts requests.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks run in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an App.
// Patterns: "api.example.com" (exact) or "*.example.com" (wildcard).
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the App for requests that match no domain.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an error answered with the given status.
func NewHTTPError(code int, message string, opts ...internal.HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// IsHTTPError reports whether err carries an *HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsPanicError extracts the PanicError from err if present.
func AsPanicError(err error) (*PanicError, bool) {
	return slot.AsPanicError(err)
}

// Extractors

// NewExtractor creates an Extractor trying sources in order.
//
// Example:
//
//	middlewares.WithJWTExtractor(husca.NewExtractor(
//	    husca.FromBearerToken(),
//	    husca.FromCookie("token"),
//	))
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromParam reads a route parameter.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromForm reads a form field.
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// FromCookie reads a cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromBearerToken reads a Bearer token from the Authorization header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// FromContext reads a string stored with Context.Set.
func FromContext(key any) ExtractorSource { return internal.FromContext(key) }

// Context helpers

// ContextValue retrieves a typed value stored with Context.Set.
// Returns the zero value of T if the key is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a route parameter converted to T.
func Param[T internal.Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a query parameter converted to T.
func Query[T internal.Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}
