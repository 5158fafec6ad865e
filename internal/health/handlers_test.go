package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/health"
)

type readyBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func ok(context.Context) error { return nil }

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReadyReportsFailingProbe(t *testing.T) {
	h := health.Handler{Probes: map[string]health.Probe{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
		"redis":    ok,
	}}
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body readyBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "connection refused", body.Checks["postgres"])
	require.Equal(t, "ok", body.Checks["redis"])
}

func TestReadyWithRedisProbe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := health.Handler{Probes: map[string]health.Probe{"redis": health.RedisProbe(client)}}
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestReadinessAfterShutdown(t *testing.T) {
	h := health.Handler{Probes: map[string]health.Probe{"noop": ok}}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)

	health.SetReady(false)
	t.Cleanup(func() { health.SetReady(true) })
	rr := httptest.NewRecorder()
	h.Ready(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	health.SetReady(true)
	rr = httptest.NewRecorder()
	h.Ready(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
