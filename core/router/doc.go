// Package router provides a typed HTTP router with middleware support and
// pluggable request contexts. Pattern matching is delegated to
// http.ServeMux, so routes use the standard pattern syntax.
//
// # Basic Usage
//
//	r := router.New[*router.Context]()
//
//	r.Get("/{$}", indexHandler)
//	r.Post("/text", setTextHandler)
//	r.Get("/blob/{id}", func(ctx *router.Context) handler.Response {
//		return response.Text(ctx.Param("id"))
//	})
//
//	http.ListenAndServe(":8080", r)
//
// Note that "/" matches every path; use "/{$}" to match the root only.
//
// # Custom Context
//
// Any type implementing handler.Context can be used. Types other than
// *router.Context need a factory:
//
//	type Context struct {
//		*router.Context
//		studio *studio.Studio
//	}
//
//	r := router.New(router.WithContextFactory(func(w http.ResponseWriter, r *http.Request) *Context {
//		return &Context{Context: router.NewContext(w, r)}
//	}))
//
// # Middleware
//
// Middleware registered with Use or WithMiddleware wraps every route and
// must be added before the first route. With and Group create inline
// routers whose middleware applies only to the routes they register:
//
//	r.Use(middleware.RequestID[*Context]())
//	r.With(requireSession).Get("/export", exportHandler)
//
// # Error Handling
//
// Errors returned by a Response, nil responses, recovered panics, and
// unmatched requests are passed to the error handler. Unmatched requests
// arrive as ErrNotFound or ErrMethodNotAllowed; the Allow header is set for
// the latter before the handler runs. StatusOf maps an error to its HTTP
// status.
package router
