package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rule bounds how many requests a key may make within Window.
type Rule struct {
	Window time.Duration
	Max    int
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Allower is implemented by SlidingWindow.
type Allower interface {
	Allow(ctx context.Context, key string, rule Rule) (Decision, error)
}

// SlidingWindow counts requests in a Redis sorted set per key.
type SlidingWindow struct {
	Client redis.Cmdable
	Prefix string
}

// Allow records a request for key and reports whether it fits rule.
// A disabled rule or missing client always allows.
func (s SlidingWindow) Allow(ctx context.Context, key string, rule Rule) (Decision, error) {
	now := time.Now()
	reset := now.Add(rule.Window)
	if s.Client == nil || rule.Max <= 0 || rule.Window <= 0 {
		return Decision{Allowed: true, Remaining: rule.Max, ResetAt: reset}, nil
	}

	redisKey := s.Prefix + key
	cutoff := fmt.Sprintf("%d", now.Add(-rule.Window).UnixNano())

	pipe := s.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rule.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{ResetAt: reset}, err
	}

	current := int(count.Val())
	remaining := rule.Max - current
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: current <= rule.Max, Remaining: remaining, ResetAt: reset}, nil
}
