package flattax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

const (
	lookupSQL = `SELECT id, label, amount::text FROM flat_tax_rules WHERE id = $1 AND tenant_id IS NULL`

	lookupTenantSQL = `SELECT id, label, amount::text FROM flat_tax_rules
WHERE id = $1 AND (tenant_id = $2 OR tenant_id IS NULL)
ORDER BY tenant_id NULLS LAST
LIMIT 1`
)

// Querier is the subset of pgxpool.Pool used by PGStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore reads flat tax rules from Postgres. Tenant-specific rules win over global ones.
type PGStore struct {
	Q Querier
}

// NewPGStore constructs a Postgres-backed provider.
func NewPGStore(q Querier) *PGStore {
	return &PGStore{Q: q}
}

// Lookup performs a direct read for id, scoped to the tenant in ctx when present.
func (s *PGStore) Lookup(ctx context.Context, id int64) (Rule, error) {
	if s == nil || s.Q == nil {
		return Rule{}, fmt.Errorf("%w: store not configured", ErrStoreUnavailable)
	}
	var row pgx.Row
	if tenantID, ok := tenant.FromContext(ctx); ok {
		row = s.Q.QueryRow(ctx, lookupTenantSQL, id, tenantID)
	} else {
		row = s.Q.QueryRow(ctx, lookupSQL, id)
	}

	var (
		rule   Rule
		amount string
	)
	if err := row.Scan(&rule.ID, &rule.Label, &amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
		}
		return Rule{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Rule{}, fmt.Errorf("%w: id %d amount %q: %v", ErrInvalidRule, id, amount, err)
	}
	rule.Amount = parsed
	if err := validate(rule); err != nil {
		return Rule{}, fmt.Errorf("%w: id %d amount %s is negative", err, id, parsed)
	}
	return rule, nil
}
