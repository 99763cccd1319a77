package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/qrstudio/core/handler"
	"github.com/dmitrymomot/qrstudio/core/response"
	"github.com/dmitrymomot/qrstudio/pkg/ratelimiter"
)

// RateLimiter is the part of *ratelimiter.Limiter the middleware needs.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimiter.Result, error)
}

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Limiter decides whether a request may proceed
	Limiter RateLimiter
	// KeyExtractor picks the bucket for a request (default: remote IP)
	KeyExtractor func(ctx C) string
	// SetHeaders adds X-RateLimit-* headers to every response
	SetHeaders bool
}

// RateLimit rejects requests with 429 once the bucket for their key is
// empty. Rejected responses always carry Retry-After. Panics without a
// limiter.
func RateLimit[C handler.Context](cfg RateLimitConfig[C]) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx C) string { return RemoteIP(ctx.Request()) }
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx.Request().Context(), cfg.KeyExtractor(ctx))
			if err != nil {
				return response.Error(response.ErrServiceUnavailable.WithError(err))
			}

			if !result.Allowed() {
				retry := retryAfterSeconds(result)
				resp := response.Error(response.ErrTooManyRequests.
					WithMessage("too many requests, try again later").
					WithDetails(map[string]any{"retry_after": retry}))
				return withRateLimitHeaders(resp, result, cfg.SetHeaders, retry)
			}

			resp := next(ctx)
			if !cfg.SetHeaders {
				return resp
			}
			return withRateLimitHeaders(resp, result, true, 0)
		}
	}
}

// RemoteIP returns the host part of r.RemoteAddr.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(result ratelimiter.Result) int {
	return max(1, int(math.Ceil(result.RetryAfter().Seconds())))
}

func withRateLimitHeaders(resp handler.Response, result ratelimiter.Result, limits bool, retryAfter int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if limits {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		}
		if retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		}
		return resp(w, r)
	}
}
