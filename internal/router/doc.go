// Package router matches web requests and console commands to slot chains.
//
// A [Router] holds web routes, a [Commander] holds console commands. Both
// are plain builders during setup and compile into a single slot with
// GenerateSlot, which is what the application mounts:
//
//	api := router.New(router.WithPrefix("/api"), router.WithMethodMismatch()).
//	    Get("/users/:id", router.Config{Action: showUser}).
//	    Post("/users", router.Config{Slots: validate, Action: createUser})
//
// # Precedence
//
// Within one route, URIs declared later win. Across routes of one router,
// the route registered first wins. Once a route matched, no other route is
// tried, even if the matched chain calls through to its end.
//
// # Cut point
//
// Group slots are often derived from the application's global set. The
// global set already runs before the router, so GenerateSlot receives the
// ID of the last global slot and only keeps the group slots added after it.
// See [CutGlobalSlots].
//
// # Discovery
//
// A [Parser] registers routers at most once, by identity, either directly
// with ParseRouter or from files with ParsePath. Files are resolved with
// doublestar globs and their exports come from a [Loader], by default the
// [Registry] that [Export] writes to.
package router
