package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/dmitrymomot/qrstudio/core/handler"
)

var allowedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// mux is the private implementation of Router. Pattern matching is delegated
// to http.ServeMux, so patterns use its syntax: "/blob/{id}", "/static/{path...}".
type mux[C handler.Context] struct {
	serveMux     *http.ServeMux
	routes       *[]Route
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
	parent       *mux[C] // set on inline groups
	inline       bool
	sealed       bool // true once a route is registered
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		serveMux:     http.NewServeMux(),
		routes:       &[]Route{},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	if _, pattern := m.serveMux.Handler(r); pattern == "" {
		// Let the standard mux decide between 404 and 405 without
		// writing, then report through our own error handler.
		probe := &probeWriter{}
		m.serveMux.ServeHTTP(probe, r)

		ctx := m.newContext(ww, r)
		if probe.status == http.StatusMethodNotAllowed {
			if allow := probe.Header().Get("Allow"); allow != "" {
				ww.Header().Set("Allow", allow)
			}
			m.errorHandler(ctx, ErrMethodNotAllowed)
			return
		}
		m.errorHandler(ctx, ErrNotFound)
		return
	}

	m.serveMux.ServeHTTP(ww, r)
}

// endpoint adapts a HandlerFunc into an http.Handler for the standard mux.
func (m *mux[C]) endpoint(fn handler.HandlerFunc[C]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(*responseWriter)
		if !ok {
			ww = newResponseWriter(w)
		}
		ctx := m.newContext(ww, r)

		defer func() {
			if p := recover(); p != nil {
				panicErr := &panicError{value: p, stack: debug.Stack()}
				if ww.Written() {
					m.logger.Error("panic after response written",
						"value", panicErr.value,
						"stack", string(panicErr.stack),
						"path", r.URL.Path,
						"method", r.Method,
						"status", ww.Status(),
					)
					return
				}
				m.errorHandler(ctx, panicErr)
			}
		}()

		h := fn
		if len(m.middlewares) > 0 {
			h = chain(m.middlewares, fn)
		}

		resp := h(ctx)
		if resp == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}
		// Middleware may have replaced the request to carry new values.
		if err := resp(ww, ctx.Request()); err != nil {
			m.errorHandler(ctx, err)
		}
	})
}

// Get registers a handler for GET requests. HEAD is served by the same handler.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !slices.Contains(allowedMethods, method) {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// Use appends middleware to the router. It must be called before any route
// is registered.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.sealed {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		serveMux:     m.serveMux,
		routes:       m.routes,
		inline:       true,
		parent:       m,
		middlewares:  middlewares,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes in registration order.
func (m *mux[C]) Routes() []Route {
	return slices.Clone(*m.routes)
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}

	// Inline groups wrap the endpoint with their own middleware chain;
	// the root middlewares are applied at dispatch time.
	h := fn
	root := m
	if m.inline {
		var all []handler.Middleware[C]
		for curr := m; curr != nil && curr.inline; curr = curr.parent {
			all = append(slices.Clone(curr.middlewares), all...)
			root = curr.parent
		}
		if len(all) > 0 {
			h = chain(all, fn)
		}
	}
	root.sealed = true

	full := pattern
	if method != "" {
		full = method + " " + pattern
	}
	m.serveMux.Handle(full, root.endpoint(h))

	if method == "" {
		method = "*"
	}
	*m.routes = append(*m.routes, Route{Method: method, Pattern: pattern})
}
