// Package cache builds tenant-scoped Redis keys.
package cache

import (
	"context"
	"strings"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

// NoTenant stands in for the tenant segment when the context carries none.
const NoTenant = "-"

// TenantKey joins parts under the tenant from ctx, e.g. "acme:finalize:<order>".
func TenantKey(ctx context.Context, parts ...string) string {
	id, ok := tenant.FromContext(ctx)
	if !ok {
		id = NoTenant
	}
	return strings.Join(append([]string{id}, parts...), ":")
}

// FinalizeLockKey guards concurrent finalization of one order.
func FinalizeLockKey(ctx context.Context, orderID string) string {
	return "lock:" + TenantKey(ctx, "finalize", orderID)
}
