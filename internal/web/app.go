package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/qrstudio/core/handler"
	"github.com/dmitrymomot/qrstudio/core/health"
	"github.com/dmitrymomot/qrstudio/core/response"
	"github.com/dmitrymomot/qrstudio/core/router"
	"github.com/dmitrymomot/qrstudio/core/static"
	"github.com/dmitrymomot/qrstudio/internal/export"
	"github.com/dmitrymomot/qrstudio/middleware"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

const defaultTitle = "QR Studio"

// App serves the QR generator page and its endpoints.
type App struct {
	sessions    *Sessions
	pipeline    *export.Pipeline
	logger      *slog.Logger
	checks      []health.Check
	title       string
	development bool
	bodyLimit   int64
	exportLimit middleware.RateLimiter
}

// Option configures an App.
type Option func(*App)

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPipeline replaces the default export pipeline.
func WithPipeline(p *export.Pipeline) Option {
	return func(a *App) {
		if p != nil {
			a.pipeline = p
		}
	}
}

// WithReadinessChecks adds checks to /ready.
func WithReadinessChecks(checks ...health.Check) Option {
	return func(a *App) {
		a.checks = append(a.checks, checks...)
	}
}

func WithTitle(title string) Option {
	return func(a *App) {
		if title != "" {
			a.title = title
		}
	}
}

// WithDevelopment relaxes security headers for plain-HTTP local use.
func WithDevelopment(dev bool) Option {
	return func(a *App) { a.development = dev }
}

func WithBodyLimit(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.bodyLimit = n
		}
	}
}

// WithExportLimiter throttles /export per client address. Exports are
// unlimited without one.
func WithExportLimiter(l middleware.RateLimiter) Option {
	return func(a *App) { a.exportLimit = l }
}

// New creates the app. Readiness always includes a render probe.
func New(sessions *Sessions, opts ...Option) *App {
	a := &App{
		sessions:  sessions,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		title:     defaultTitle,
		bodyLimit: 64 * middleware.KB,
		checks:    []health.Check{RenderProbe},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pipeline == nil {
		a.pipeline = export.New(export.WithLogger(a.logger))
	}
	return a
}

// RenderProbe checks that a QR graphic can be rendered.
func RenderProbe(context.Context) error {
	_, err := qrcode.Vector("ready")
	return err
}

// Handler builds the router.
func (a *App) Handler() http.Handler {
	security := middleware.BalancedSecurity
	if a.development {
		security = middleware.DevelopmentSecurity
	}

	r := router.New[*Context](
		router.WithContextFactory(newContext),
		router.WithErrorHandler[*Context](response.NegotiatedErrorHandler[*Context]),
		router.WithLogger[*Context](a.logger),
		router.WithMiddleware[*Context](
			middleware.RequestID[*Context](),
			middleware.LoggingWithLogger[*Context](a.logger),
			middleware.SecurityHeadersWithConfig[*Context](security),
			middleware.BodyLimitWithSize[*Context](a.bodyLimit),
		),
	)

	r.Get("/static/", static.FS[*Context](assets,
		static.WithSubFS("static"),
		static.WithFSStripPrefix("/static"),
		static.WithCacheControl("public, max-age=3600"),
	))
	r.Get("/live", health.Liveness[*Context])
	r.Get("/ready", health.Readiness[*Context](a.logger, a.checks...))

	r.Group(func(r router.Router[*Context]) {
		r.Use(a.withSession)

		r.Get("/{$}", a.index)
		r.Post("/text", a.setText)
		r.Post("/color", a.setColor)
		r.Post("/size", a.setSize)
		r.Post("/reset", a.reset)
		r.Get("/state", a.state)
		r.Get("/preview.svg", a.preview)
		r.Get("/ws", a.live)
	})

	// Throttled before the session is acquired, so rejected requests
	// allocate nothing.
	r.With(append(a.exportMiddleware(), a.withSession)...).Get("/export", a.export)
	r.Get("/blob/{id}", a.blob)

	return r
}

// withSession attaches the visitor's session to the context.
func (a *App) withSession(next handler.HandlerFunc[*Context]) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		sess, err := a.sessions.Acquire(ctx.ResponseWriter(), ctx.Request())
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		ctx.session = sess
		return next(ctx)
	}
}

func (a *App) exportMiddleware() []handler.Middleware[*Context] {
	if a.exportLimit == nil {
		return nil
	}
	return []handler.Middleware[*Context]{
		middleware.RateLimit(middleware.RateLimitConfig[*Context]{
			Limiter:      a.exportLimit,
			KeyExtractor: func(ctx *Context) string { return "export:" + middleware.RemoteIP(ctx.Request()) },
			SetHeaders:   true,
		}),
	}
}
