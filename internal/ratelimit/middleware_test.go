package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardEnforcesLimitPerTenant(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := Guard{
		Limiter: SlidingWindow{Client: client, Prefix: "ratelimit:"},
		Rule:    Rule{Window: time.Minute, Max: 1},
		Key:     TenantClientKey("quote"),
		Logger:  zerolog.Nop(),
	}
	h := guard.Middleware(okHandler())

	send := func(tenantID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req = req.WithContext(tenant.WithTenant(req.Context(), tenantID))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("a").Code)
	limited := send("a")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.Equal(t, "1", limited.Header().Get("X-RateLimit-Limit"))
	require.Contains(t, limited.Body.String(), "RATE_LIMITED")
	require.NotEmpty(t, limited.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, send("b").Code)
	require.True(t, mr.Exists("ratelimit:quote:a:10.0.0.1"))
}

func TestGuardFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	guard := Guard{
		Limiter: SlidingWindow{Client: client},
		Rule:    Rule{Window: time.Second, Max: 1},
		Key:     func(*http.Request) string { return "err" },
		Logger:  zerolog.Nop(),
	}
	rec := httptest.NewRecorder()
	guard.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
