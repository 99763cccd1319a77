package ratelimiter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process memory. Buckets left untouched for
// longer than the stale threshold are dropped by Run.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	cleanupInterval time.Duration
	staleAfter      time.Duration
	logger          *slog.Logger
	now             func() time.Time

	running        atomic.Bool
	bucketsCreated atomic.Int64
	bucketsRemoved atomic.Int64
}

// MemoryStoreStats is a snapshot of store counters.
type MemoryStoreStats struct {
	BucketsCreated int64
	BucketsRemoved int64
	ActiveBuckets  int
	IsRunning      bool
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often Run sweeps stale buckets.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if interval > 0 {
			ms.cleanupInterval = interval
		}
	}
}

// WithStaleAfter sets the idle time after which a bucket is dropped.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if d > 0 {
			ms.staleAfter = d
		}
	}
}

// WithMemoryStoreLogger sets the logger for cleanup events.
func WithMemoryStoreLogger(logger *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if logger != nil {
			ms.logger = logger
		}
	}
}

// WithMemoryStoreClock replaces time.Now, mostly for tests.
func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty store. Start cleanup with Run.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*bucket),
		cleanupInterval: 5 * time.Minute,
		staleAfter:      time.Hour,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// ConsumeTokens implements Store.
func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, config Config) (int, time.Time, bool, error) {
	if tokens < 0 {
		return 0, time.Time{}, false, ErrInvalidTokenCount
	}
	if err := config.Validate(); err != nil {
		return 0, time.Time{}, false, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, exists := ms.buckets[key]
	if !exists {
		b = &bucket{tokens: config.Capacity, lastRefill: now}
		ms.buckets[key] = b
		ms.bucketsCreated.Add(1)
	}
	b.lastAccess = now

	// Cap intervals so a long idle bucket cannot overflow the token count.
	maxIntervals := int64(config.Capacity/config.RefillRate + 1)
	intervals := min(int64(now.Sub(b.lastRefill)/config.RefillInterval), maxIntervals)
	if intervals > 0 {
		b.tokens = min(b.tokens+int(intervals)*config.RefillRate, config.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * config.RefillInterval)
		if b.tokens == config.Capacity {
			b.lastRefill = now
		}
	}

	ok := b.tokens >= tokens
	if ok {
		b.tokens -= tokens
	}

	return b.tokens, b.lastRefill.Add(config.RefillInterval), ok, nil
}

// Reset implements Store.
func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.buckets, key)
	return nil
}

// Run returns a function for errgroup that sweeps stale buckets until ctx
// is canceled.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		if !ms.running.CompareAndSwap(false, true) {
			return errors.New("ratelimiter: memory store already running")
		}
		defer ms.running.Store(false)

		ms.logger.InfoContext(ctx, "rate limit cleanup started",
			slog.Duration("cleanup_interval", ms.cleanupInterval))

		ticker := time.NewTicker(ms.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				ms.logger.InfoContext(context.WithoutCancel(ctx), "rate limit cleanup stopped")
				return nil
			case <-ticker.C:
				if n := ms.RemoveStale(); n > 0 {
					ms.logger.DebugContext(ctx, "stale rate limit buckets removed", slog.Int("count", n))
				}
			}
		}
	}
}

// RemoveStale drops idle buckets and returns how many were removed.
func (ms *MemoryStore) RemoveStale() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	removed := 0
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > ms.staleAfter {
			delete(ms.buckets, key)
			removed++
		}
	}

	ms.bucketsRemoved.Add(int64(removed))
	return removed
}

// Stats returns current store counters.
func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	active := len(ms.buckets)
	ms.mu.Unlock()

	return MemoryStoreStats{
		BucketsCreated: ms.bucketsCreated.Load(),
		BucketsRemoved: ms.bucketsRemoved.Load(),
		ActiveBuckets:  active,
		IsRunning:      ms.running.Load(),
	}
}

// Healthcheck fails while cleanup is not running.
func (ms *MemoryStore) Healthcheck(context.Context) error {
	if !ms.running.Load() {
		return errors.New("ratelimiter: cleanup is not running")
	}
	return nil
}
