// Package flattax resolves per-unit flat tax rules from their authoritative store.
//
// Providers never cache: every Lookup reads the store, so an edited rule affects the
// very next checkout.
package flattax

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrRuleNotFound is returned when a flat tax id does not resolve to a rule.
	ErrRuleNotFound = errors.New("flat tax rule not found")
	// ErrStoreUnavailable wraps failures reaching the rule store.
	ErrStoreUnavailable = errors.New("flat tax store unavailable")
	// ErrInvalidRule indicates the stored rule cannot be used (e.g. unparsable or negative amount).
	ErrInvalidRule = errors.New("flat tax rule invalid")
)

// Rule is a per-unit flat tax, e.g. a county cigar tax.
type Rule struct {
	ID     int64
	Label  string
	Amount decimal.Decimal
}

// Provider resolves one rule id against the authoritative store.
type Provider interface {
	Lookup(ctx context.Context, id int64) (Rule, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, id int64) (Rule, error)

// Lookup calls f.
func (f ProviderFunc) Lookup(ctx context.Context, id int64) (Rule, error) {
	return f(ctx, id)
}

func validate(r Rule) error {
	if r.Amount.IsNegative() {
		return ErrInvalidRule
	}
	return nil
}
