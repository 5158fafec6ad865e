package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/cache"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
)

// KeyFunc derives the limiter key for a request. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// TenantClientKey keys requests by scope, tenant and client IP.
func TenantClientKey(scope string) KeyFunc {
	return func(r *http.Request) string {
		return scope + ":" + cache.TenantKey(r.Context(), common.ClientIP(r))
	}
}

// Guard enforces a Rule before delegating. Limiter failures let the request through.
type Guard struct {
	Limiter Allower
	Rule    Rule
	Key     KeyFunc
	Logger  zerolog.Logger
}

// Middleware implements the chi middleware signature.
func (g Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Limiter == nil || g.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := g.Key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		d, err := g.Limiter.Allow(r.Context(), key, g.Rule)
		if err != nil {
			g.Logger.Warn().Err(err).Str("key", key).Msg("rate_limit_unavailable")
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(g.Rule.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			headers.Set("Retry-After", strconv.Itoa(max(int(time.Until(d.ResetAt).Seconds()), 0)))
			common.JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
