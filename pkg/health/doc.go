// Package health runs dependency checks and serves liveness and readiness
// probes.
//
// A check is any func(context.Context) error. Run executes a set of named
// checks in parallel under one deadline; CheckAll does the same and returns
// an error, which suits console commands and startup hooks:
//
//	checks := health.Checks{
//	    "redis": redis.Healthcheck(client),
//	}
//	if err := health.CheckAll(ctx, checks, health.WithTimeout(2*time.Second)); err != nil {
//	    return err
//	}
//
// LivenessHandler and ReadinessHandler are plain http.HandlerFuncs. Apps
// mount them with husca.WithHealthChecks. They answer "OK" as text, or the
// full Response as JSON when the client sends Accept: application/json or
// ?format=json:
//
//	{"checks":{"redis":{"status":"healthy","duration":"1.2ms"}},"status":"healthy"}
//
// Failing checks turn the readiness response into a 503.
package health
