package rate_limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.IsAllowed(ctx, "10.0.0.1"))
	}
	assert.False(t, rl.IsAllowed(ctx, "10.0.0.1"))
	assert.Equal(t, 0, rl.GetRemainingRequests(ctx, "10.0.0.1"))

	assert.True(t, rl.IsAllowed(ctx, "10.0.0.2"))
	assert.Equal(t, 2, rl.GetRemainingRequests(ctx, "10.0.0.2"))
}

func TestRateLimiterRemainingDoesNotCount(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	assert.Equal(t, 2, rl.GetRemainingRequests(ctx, "client"))
	assert.Equal(t, 2, rl.GetRemainingRequests(ctx, "client"))
	assert.True(t, rl.IsAllowed(ctx, "client"))
	assert.Equal(t, 1, rl.GetRemainingRequests(ctx, "client"))
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiterWithStore(1, 100*time.Millisecond, memory.NewStore())
	ctx := context.Background()

	assert.True(t, rl.IsAllowed(ctx, "client"))
	assert.False(t, rl.IsAllowed(ctx, "client"))

	time.Sleep(250 * time.Millisecond)
	assert.True(t, rl.IsAllowed(ctx, "client"))
}

func TestRateLimiterExposesConfiguration(t *testing.T) {
	rl := NewRateLimiter(10, 5*time.Minute)

	assert.Equal(t, 10, rl.Limit())
	assert.Equal(t, 5*time.Minute, rl.Window())
}
