package security

import (
	"net/http"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
)

// BodyLimit caps request payload size.
type BodyLimit struct {
	Max int64
}

// Middleware rejects declared oversize bodies with 413 and caps the rest, so a decoder
// reading past Max fails.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			common.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", map[string]any{"maxBytes": b.Max})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}
