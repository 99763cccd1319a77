// Package health provides liveness and readiness handlers.
//
//	r.Get("/live", health.Liveness[*web.Context])
//	r.Get("/ready", health.Readiness[*web.Context](log, renderProbe, surfaceProbe))
//
// A check is any func(context.Context) error. Readiness runs them
// concurrently and answers 503 when one fails.
package health
