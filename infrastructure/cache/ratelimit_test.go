package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyKey(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "ratelimit:generate:user-1:2024-03-15", dailyKey("user-1", now))
}

func TestNextMidnightUTC(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	reset := nextMidnightUTC(now)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), reset)

	// Just before midnight still resets at the next boundary.
	late := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), nextMidnightUTC(late))
}

func TestRateLimiterAllowsWithoutRedis(t *testing.T) {
	limiter := &RateLimiter{freeCredits: 3, proCredits: 100, now: time.Now}

	quota, err := limiter.Allow(context.Background(), "user-1", false)
	require.NoError(t, err)
	assert.True(t, quota.Allowed)
	assert.Equal(t, 3, quota.Limit)

	quota, err = limiter.Allow(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.True(t, quota.Allowed)
	assert.Equal(t, 100, quota.Limit)
}
