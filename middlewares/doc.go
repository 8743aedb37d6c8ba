// Package middlewares provides ready-made slots for husca applications.
//
// Every constructor returns a *slot.Slot, so a middleware can be loaded
// globally with husca.WithMiddleware, attached to a single route through
// RouteConfig.Slots, or skipped with Unless:
//
//	app := husca.New(
//	    husca.WithLogger("api", middlewares.RequestIDExtractor()),
//	    husca.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.RealIP(),
//	        middlewares.Recover(),
//	        middlewares.Logger(log),
//	        middlewares.CORS(middlewares.WithAllowOrigins("https://app.example.com")),
//	        middlewares.Compress().Unless(husca.Condition{Ext: []string{".png", ".jpg"}}),
//	    ),
//	)
//
// # Request handling
//
//   - RequestID assigns or propagates a request ID and exposes it to logs.
//   - RealIP, NoCache and Heartbeat adapt the chi middlewares of the same name.
//   - Recover turns panics into *PanicError.
//   - Timeout bounds the downstream chain and fails with *TimeoutError.
//   - RateLimit throttles clients with token buckets kept in a cache.
//   - JWT verifies bearer tokens and stores typed claims on the context.
//
// # Bodies and validation
//
// BodyParser decodes JSON, urlencoded and multipart bodies into Context.Body.
// Validate binds request data into a struct and validates it:
//
//	Put("/:id", husca.RouteConfig{
//	    Slots:  middlewares.Validate[UpdateUser](middlewares.BindParams, middlewares.BindJSON),
//	    Action: husca.Action(updateUser),
//	})
//
// Inside the action, Validated[UpdateUser](c) returns the bound value.
// Validation failures answer 422 with the failing fields.
//
// # Responses
//
// Compress negotiates brotli or gzip. ETag answers conditional GETs
// with 304. Both wrap the response writer only while the chain runs, so
// they apply to responses written by the action (c.JSON, c.String, c.Blob).
// A value returned from the chain is rendered by the app after these slots
// have finished and goes out uncompressed and without an ETag. An action
// that calls c.JSON(http.StatusOK, users) is compressed; a slot that
// returns users, nil is not.
//
// Static serves an fs.FS with cache headers. Metrics records
// Prometheus request metrics and MetricsHandler exposes them.
package middlewares
