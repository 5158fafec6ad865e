// Package lock serializes work across replicas with a Redis key.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the lock could not be taken in time or Redis failed.
var ErrUnavailable = errors.New("lock unavailable")

var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// RedisLocker provides a Redis-backed distributed lock.
type RedisLocker struct {
	R            redis.Cmdable
	TTL          time.Duration
	Wait         time.Duration
	RetryBackoff time.Duration
}

// Hold runs fn while holding key. The lock is released even if fn fails, but only
// when this holder still owns it. Waiting stops after Wait or when ctx is done.
func (l RedisLocker) Hold(ctx context.Context, key string, fn func(context.Context) error) error {
	if l.R == nil {
		return fn(ctx)
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	wait := l.Wait
	if wait <= 0 {
		wait = ttl
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ok {
			defer l.release(key, token)
			return fn(ctx)
		}
		if time.Now().Add(retry).After(deadline) {
			return fmt.Errorf("%w: %s held by another request", ErrUnavailable, key)
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, l.R, []string{key}, token).Err()
}
