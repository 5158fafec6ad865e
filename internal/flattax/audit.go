package flattax

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

// Audited wraps a Provider with an audit log line, a span and a lookup counter.
type Audited struct {
	Next   Provider
	Logger zerolog.Logger
}

// Lookup delegates to Next and records the outcome.
func (a Audited) Lookup(ctx context.Context, id int64) (Rule, error) {
	ctx, span := otel.Tracer("flattax").Start(ctx, "flattax.lookup")
	defer span.End()
	span.SetAttributes(attribute.Int64("flattax.id", id))

	rule, err := a.Next.Lookup(ctx, id)
	result := resultLabel(err)
	obs.ObserveFlatTaxLookup(result)

	evt := a.Logger.Debug()
	if err != nil {
		evt = a.Logger.Warn().Err(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	} else {
		evt = evt.Str("label", rule.Label).Str("amount", rule.Amount.StringFixed(2))
	}
	if tenantID, ok := tenant.FromContext(ctx); ok {
		evt = evt.Str("tenant_id", tenantID)
	}
	evt.Int64("flat_tax_id", id).Str("result", result).Msg("flat_tax_lookup")
	return rule, err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRuleNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRule):
		return "invalid"
	default:
		return "error"
	}
}
