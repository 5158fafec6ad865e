package lock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/lock"
)

func newLocker(t *testing.T) (lock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.RedisLocker{R: client, TTL: time.Second, Wait: time.Second, RetryBackoff: 5 * time.Millisecond}, mr
}

func TestHoldSerializes(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		order []string
	)
	firstIn := make(chan struct{})
	releaseFirst := make(chan struct{})
	errs := make(chan error, 2)

	go func() {
		errs <- locker.Hold(ctx, "demo", func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(firstIn)
			<-releaseFirst
			return nil
		})
	}()
	<-firstIn
	go func() {
		errs <- locker.Hold(ctx, "demo", func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
	}()
	close(releaseFirst)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, order)
}

func TestHoldReleasesOnError(t *testing.T) {
	locker, mr := newLocker(t)
	boom := errors.New("boom")
	err := locker.Hold(context.Background(), "demo", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("demo"))
}

func TestHoldGivesUpAfterWait(t *testing.T) {
	locker, mr := newLocker(t)
	require.NoError(t, mr.Set("demo", "someone-else"))
	locker.Wait = 20 * time.Millisecond

	called := false
	err := locker.Hold(context.Background(), "demo", func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, lock.ErrUnavailable)
	require.False(t, called)
	v, _ := mr.Get("demo")
	require.Equal(t, "someone-else", v, "foreign lock must not be released")
}

func TestHoldWithoutRedisRunsInline(t *testing.T) {
	called := false
	require.NoError(t, lock.RedisLocker{}.Hold(context.Background(), "demo", func(context.Context) error {
		called = true
		return nil
	}))
	require.True(t, called)
}
