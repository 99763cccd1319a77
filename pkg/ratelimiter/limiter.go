package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store keeps bucket state per key.
//
// ConsumeTokens refills the bucket, then takes tokens only when enough are
// available. It returns the tokens left afterwards and whether the take
// happened. Consuming zero tokens peeks at the bucket.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, ok bool, err error)
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of a single limiter check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	allowed   bool
}

// Allowed reports whether the tokens were granted.
func (r Result) Allowed() bool { return r.allowed }

// RetryAfter is how long a rejected caller should wait before the bucket
// refills. It is zero for allowed results.
func (r Result) RetryAfter() time.Duration {
	if r.allowed {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Limiter applies one bucket configuration to any number of keys.
type Limiter struct {
	store  Store
	config Config
}

// New validates config and binds it to store.
func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreUnavailable
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// Config returns the bucket parameters the limiter enforces.
func (l *Limiter) Config() Config { return l.config }

// Allow takes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key. Requests larger than the bucket capacity
// can never succeed and fail with ErrInvalidTokenCount.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 || n > l.config.Capacity {
		return Result{}, fmt.Errorf("%w: %d (capacity %d)", ErrInvalidTokenCount, n, l.config.Capacity)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	remaining, resetAt, ok, err := l.store.ConsumeTokens(ctx, key, n, l.config)
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}

	return Result{
		Limit:     l.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		allowed:   ok,
	}, nil
}

// Status reports the bucket for key without consuming anything.
func (l *Limiter) Status(ctx context.Context, key string) (Result, error) {
	remaining, resetAt, _, err := l.store.ConsumeTokens(ctx, key, 0, l.config)
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	return Result{
		Limit:     l.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		allowed:   remaining > 0,
	}, nil
}

// Reset refills the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
