package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdemReplaysStoredResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls atomic.Int32
	h := Idem{R: client, TTL: time.Hour}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		JSON(w, http.StatusCreated, map[string]any{"call": n})
	}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/x/finalize", strings.NewReader(`{}`))
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("abc")
	require.Equal(t, http.StatusCreated, first.Code)
	second := send("abc")
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, int32(1), calls.Load())

	send("")
	require.Equal(t, int32(2), calls.Load())
}

func TestIdemReleasesKeyOnServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls atomic.Int32
	h := Idem{R: client, TTL: time.Hour}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		JSONError(w, nil, http.StatusServiceUnavailable, "TAX_STORE_UNAVAILABLE", "down", nil)
	}))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/finalize", nil)
		req.Header.Set(IdempotencyHeader, "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Equal(t, int32(2), calls.Load())
}

func TestIdemInFlightConflict(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	idem := Idem{R: client, TTL: time.Hour}
	req := httptest.NewRequest(http.MethodPost, "/finalize", nil)
	req.Header.Set(IdempotencyHeader, "busy")
	require.NoError(t, mr.Set(idem.key(req, "busy"), idemPending))

	rec := httptest.NewRecorder()
	idem.Middleware(http.NotFoundHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "IDEMPOTENT_IN_FLIGHT")
}
