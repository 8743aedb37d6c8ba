// Package husca is a small framework for web and console applications built
// from slots: ordered handler units that either answer a request or pass it
// on with next().
//
// # Slots
//
// A slot wraps a body with the signature func(ctx, next) (any, error).
// It is tagged with a target (web, command or either) and can be skipped by
// a Condition:
//
//	auth := husca.Web(func(c husca.Context, next husca.Next) (any, error) {
//	    if c.Header("Authorization") == "" {
//	        return nil, husca.NewHTTPError(http.StatusUnauthorized, "")
//	    }
//	    return next()
//	}).Unless(husca.Condition{Path: []string{"/login"}})
//
// Slot sets (ManageSlots) keep slots in order and reject slots of an
// incompatible target.
//
// # Routers
//
// Routers turn route tables into a single slot. A request runs the global
// slots, then every router in mount order, until one of them answers:
//
//	var Users = husca.Export(husca.NewRouter(husca.WithPrefix("/users")).
//	    Get("/", husca.RouteConfig{Action: husca.Action(listUsers)}).
//	    Get("/:id", husca.RouteConfig{Action: husca.Action(showUser)}))
//
//	app := husca.New(
//	    husca.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    husca.WithRouters(Users),
//	)
//
// Routers exported with Export can also be discovered by file glob with
// WithRouterPaths("routes/**/*.go"). The package declaring them still has to
// be linked into the binary.
//
// # Results
//
// An action usually writes the response itself. When the chain ends with a
// non-nil result instead, the app renders it: strings as text, byte slices
// and readers as octet streams, anything else as JSON. Errors go to the
// error handler; *HTTPError keeps its status, anything else answers 500.
//
// # Console
//
// Commanders do for argv what routers do for requests:
//
//	var DB = husca.Export(husca.NewCommander(husca.WithCommandPrefix("db:")).
//	    Create("migrate", husca.RouteConfig{Action: husca.CommandAction(migrate)}))
//
//	console := husca.NewConsole(husca.WithCommanders(DB))
//	os.Exit(console.Exec(ctx, os.Args[1:]))
//
// # Running
//
// App.Run serves one app; Run serves several behind host patterns with
// graceful shutdown on SIGINT and SIGTERM:
//
//	err := husca.Run(
//	    husca.Domain("api.acme.com", api),
//	    husca.Fallback(site),
//	    husca.Address(":8080"),
//	)
package husca
