package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/qrstudio/core/handler"
	"github.com/dmitrymomot/qrstudio/core/logger"
	"github.com/dmitrymomot/qrstudio/core/response"
)

// Check probes one dependency.
type Check func(context.Context) error

// Readiness runs all checks concurrently. It answers "READY" when every
// check passes and 503 as soon as one fails.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		g, gctx := errgroup.WithContext(ctx)
		for _, check := range checks {
			g.Go(func() error { return check(gctx) })
		}

		if err := g.Wait(); err != nil {
			if log != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Component("health"), logger.Error(err))
			}
			return response.Error(response.ErrServiceUnavailable)
		}

		return response.NoStore(response.String("READY"))
	}
}
