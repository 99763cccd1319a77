// Package ratelimiter implements token bucket rate limiting over a
// pluggable Store.
//
// A bucket holds up to Config.Capacity tokens and regains Config.RefillRate
// tokens every Config.RefillInterval. A request is allowed only when the
// bucket holds enough tokens; a rejected request consumes nothing.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 6 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, "session:"+id)
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		// wait res.RetryAfter()
//	}
//
// MemoryStore keeps buckets in memory and drops idle ones when its Run
// function is driven by an errgroup:
//
//	g.Go(store.Run(ctx))
package ratelimiter
