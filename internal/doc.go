// Package internal provides the application shell of the husca framework.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/husca"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: the web shell. Holds the global slot set and a router parser,
//     composes them into one chain and serves it over net/http
//   - Console: the command-line shell, the same structure for commanders
//   - Context: the per-request dispatch context handed to web slots
//   - ConsoleContext: the per-invocation dispatch context handed to command slots
//   - MiddlewareFunc, HandlerFunc, Middleware: typed slot bodies and adapters
//   - HTTPError: an error carrying an HTTP status for the error handler
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context. The Deadline, Done, Err, and Value
// methods delegate to the current request context:
//
//	var getUser = husca.Action(func(c husca.Context) error {
//	    user, err := repo.GetUser(c, c.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(200, user)
//	})
//
// # Dispatch Outcome
//
// After the chain returns, the shell decides what the client sees:
//
//   - an error goes to the error handler (the default maps *HTTPError to its
//     status and everything else to 500)
//   - a written response is left alone
//   - a non-nil result is rendered: string as text, []byte and io.Reader as
//     octet-stream, anything else as JSON
//   - otherwise the not-found handler runs
//
// # Application Structure
//
//	app := internal.New(
//	    internal.WithMiddleware(requestID, recoverer),
//	    internal.WithRouters(api.Router),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("redis", redisCheck)),
//	)
//	err := app.Run(":8080")
//
// # Console
//
//	console := internal.NewConsole(internal.WithCommanders(cli.Commander))
//	os.Exit(console.Exec(context.Background(), os.Args[1:]))
package internal
