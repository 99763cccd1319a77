// Package handler defines the typed request-processing contract shared by the
// router, the response helpers and the middleware packages.
//
//	// Response renders an HTTP response
//	type Response func(w http.ResponseWriter, r *http.Request) error
//
//	// Handler with a custom context
//	type HandlerFunc[C Context] func(ctx C) Response
//
// Handlers never write to the ResponseWriter directly; they return a Response
// and let the router render it. This keeps error handling in one place:
//
//	func previewHandler(ctx *web.Context) handler.Response {
//		g, ok := ctx.Studio().Graphic()
//		if !ok {
//			return response.NoContent()
//		}
//		return response.Bytes(g.Markup, "image/svg+xml")
//	}
//
// Middleware wraps a HandlerFunc and may decorate the returned Response:
//
//	func Timing[C handler.Context]() handler.Middleware[C] {
//		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//			return func(ctx C) handler.Response {
//				start := time.Now()
//				resp := next(ctx)
//				return func(w http.ResponseWriter, r *http.Request) error {
//					w.Header().Set("Server-Timing", fmt.Sprintf("app;dur=%d", time.Since(start).Milliseconds()))
//					return resp(w, r)
//				}
//			}
//		}
//	}
package handler
