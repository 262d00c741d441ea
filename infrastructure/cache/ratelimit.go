package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"nosbot/infrastructure/logger"
)

// Quota describes the outcome of a rate limit check.
type Quota struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// IRateLimiter meters playlist generations per user per UTC day.
type IRateLimiter interface {
	Allow(ctx context.Context, userID string, pro bool) (*Quota, error)
}

// RateLimiter counts generations in Redis. Each user gets a daily credit
// budget that resets at midnight UTC.
type RateLimiter struct {
	client      *redis.Client
	freeCredits int
	proCredits  int
	now         func() time.Time
}

func NewRateLimiter(client *redis.Client, freeCredits, proCredits int) IRateLimiter {
	return &RateLimiter{
		client:      client,
		freeCredits: freeCredits,
		proCredits:  proCredits,
		now:         time.Now,
	}
}

// Allow consumes one credit for the user. When Redis is unavailable the
// request is allowed so a cache outage does not take generation down.
func (r *RateLimiter) Allow(ctx context.Context, userID string, pro bool) (*Quota, error) {
	limit := r.freeCredits
	if pro {
		limit = r.proCredits
	}

	now := r.now().UTC()
	resetAt := nextMidnightUTC(now)

	if r.client == nil {
		return &Quota{Allowed: true, Remaining: limit, Limit: limit, ResetAt: resetAt}, nil
	}

	key := dailyKey(userID, now)
	used, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).Warn("rate limit check failed, allowing request: ", err)
		return &Quota{Allowed: true, Remaining: limit, Limit: limit, ResetAt: resetAt}, nil
	}
	if used == 1 {
		r.client.ExpireAt(ctx, key, resetAt)
	}

	if used > int64(limit) {
		return &Quota{Allowed: false, Remaining: 0, Limit: limit, ResetAt: resetAt}, nil
	}
	return &Quota{Allowed: true, Remaining: limit - int(used), Limit: limit, ResetAt: resetAt}, nil
}

func dailyKey(userID string, now time.Time) string {
	return fmt.Sprintf("ratelimit:generate:%s:%s", userID, now.Format("2006-01-02"))
}

func nextMidnightUTC(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
