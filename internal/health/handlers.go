// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
)

var draining atomic.Bool

// SetReady toggles readiness. It is cleared when the server begins shutting down.
func SetReady(ready bool) {
	draining.Store(!ready)
}

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// PostgresProbe pings the pool.
func PostgresProbe(pool *pgxpool.Pool) Probe {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// RedisProbe pings the client.
func RedisProbe(client redis.UniversalClient) Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Handler exposes health endpoints.
type Handler struct {
	Probes  map[string]Probe
	Timeout time.Duration
}

// Live always reports ok while the process is serving.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs every probe and reports 503 if any fails or the server is draining.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if draining.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "draining"})
		return
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	names := make([]string, 0, len(h.Probes))
	for name := range h.Probes {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		err := h.Probes[name](ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}
	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	common.JSON(w, status, map[string]any{"status": state, "checks": checks})
}
