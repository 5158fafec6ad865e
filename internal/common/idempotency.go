package common

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const idemPending = "pending"

// IdempotencyHeader carries the client supplied key.
const IdempotencyHeader = "Idempotency-Key"

// ReplayedHeader is set on responses served from the idempotency store.
const ReplayedHeader = "Idempotent-Replayed"

// Idem provides Idempotency-Key handling backed by Redis. The first response below 500
// is stored and replayed for later requests with the same key and route.
type Idem struct {
	R     redis.Cmdable
	TTL   time.Duration
	Scope func(*http.Request) string
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

func (i Idem) key(r *http.Request, header string) string {
	scope := ""
	if i.Scope != nil {
		scope = i.Scope(r)
	}
	sum := sha256.Sum256([]byte(scope + "|" + r.Method + "|" + r.URL.Path + "|" + header))
	return "idem:" + hex.EncodeToString(sum[:])
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := i.key(r, header)
		ok, err := i.R.SetNX(ctx, key, idemPending, i.TTL).Result()
		if err != nil {
			JSONError(w, r, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "idempotency store error", nil)
			return
		}
		if !ok {
			i.replay(w, r, key)
			return
		}

		cw := &captureWriter{ResponseWriter: w}
		defer func() {
			// release the key if the handler panicked or failed server-side
			if cw.status == 0 || cw.status >= http.StatusInternalServerError {
				_ = i.R.Del(context.Background(), key).Err()
				return
			}
			payload, err := json.Marshal(storedResponse{Status: cw.status, Body: cw.buf.Bytes()})
			if err != nil {
				_ = i.R.Del(context.Background(), key).Err()
				return
			}
			_ = i.R.Set(context.Background(), key, payload, i.TTL).Err()
		}()
		next.ServeHTTP(cw, r)
	})
}

func (i Idem) replay(w http.ResponseWriter, r *http.Request, key string) {
	raw, err := i.R.Get(r.Context(), key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		JSONError(w, r, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "idempotency store error", nil)
		return
	}
	if raw == "" || raw == idemPending {
		JSONError(w, r, http.StatusConflict, "IDEMPOTENT_IN_FLIGHT", "request with this idempotency key is in progress", nil)
		return
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		JSONError(w, r, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
