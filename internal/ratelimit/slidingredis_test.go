package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowAllow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := SlidingWindow{Client: client, Prefix: "test:"}
	rule := Rule{Window: 2 * time.Second, Max: 2}
	ctx := context.Background()

	for i := 0; i < rule.Max; i++ {
		d, err := limiter.Allow(ctx, "key", rule)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, rule.Max-(i+1), d.Remaining)
	}

	d, err := limiter.Allow(ctx, "key", rule)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Zero(t, d.Remaining)

	mr.FastForward(rule.Window)

	d, err = limiter.Allow(ctx, "key", rule)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestSlidingWindowDisabledRule(t *testing.T) {
	d, err := SlidingWindow{}.Allow(context.Background(), "key", Rule{Window: time.Second, Max: 5})
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 5, d.Remaining)
}
