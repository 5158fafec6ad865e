package flattax

import (
	"context"
	"errors"
	"fmt"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/resilience"
)

// Guarded fails lookups fast with ErrStoreUnavailable while the breaker is open.
// Only store failures trip it; a missing or invalid rule is a healthy answer.
type Guarded struct {
	Next    Provider
	Breaker *resilience.Breaker
}

// Lookup implements Provider.
func (g Guarded) Lookup(ctx context.Context, id int64) (Rule, error) {
	if g.Breaker == nil {
		return g.Next.Lookup(ctx, id)
	}
	if err := g.Breaker.Allow(); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	rule, err := g.Next.Lookup(ctx, id)
	switch {
	case err == nil, errors.Is(err, ErrRuleNotFound), errors.Is(err, ErrInvalidRule):
		g.Breaker.Success()
	case ctx.Err() != nil:
		// caller gave up; says nothing about the store
		g.Breaker.Release()
	default:
		g.Breaker.Failure()
	}
	return rule, err
}
