// Package middleware holds request guards shared by the API routes.
package middleware

import (
	"net/http"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

// RequireTenant rejects requests whose context carries no tenant.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := tenant.FromContext(r.Context()); !ok {
			common.JSONError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "tenant is required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
