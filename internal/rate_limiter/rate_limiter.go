package rate_limiter

import (
	"context"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const storePrefix = "itinventory_login"

// RateLimiter is a fixed-window limiter keyed by client identifier, backed by
// an in-memory store.
type RateLimiter struct {
	limiter *limiter.Limiter
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithStore(limit, window, memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          storePrefix,
		CleanUpInterval: time.Minute,
	}))
}

// NewRateLimiterWithStore lets callers share counters through another
// limiter.Store.
func NewRateLimiterWithStore(limit int, window time.Duration, store limiter.Store) *RateLimiter {
	return &RateLimiter{
		limiter: limiter.New(store, limiter.Rate{Period: window, Limit: int64(limit)}),
		limit:   limit,
		window:  window,
	}
}

func (rl *RateLimiter) Limit() int {
	return rl.limit
}

func (rl *RateLimiter) Window() time.Duration {
	return rl.window
}

// IsAllowed counts one attempt for key and reports whether it is within the limit.
// A store failure lets the attempt through.
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) bool {
	state, err := rl.limiter.Get(ctx, key)
	if err != nil {
		return true
	}
	return !state.Reached
}

// GetRemainingRequests returns how many attempts key has left in the current window.
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, key string) int {
	state, err := rl.limiter.Peek(ctx, key)
	if err != nil {
		return rl.limit
	}
	return int(state.Remaining)
}
