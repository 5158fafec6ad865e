// Package checkout computes authoritative order breakdowns and serves them over HTTP.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/flattax"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/loyalty"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/pricing"
)

// Calculator turns a priced cart into a verified Breakdown. It holds no mutable state
// and is safe for concurrent use.
type Calculator struct {
	Taxes    flattax.Provider
	Logger   zerolog.Logger
	Excluded []string
}

// NewCalculator wires a calculator. A nil excluded list falls back to loyalty.DefaultExcluded.
func NewCalculator(taxes flattax.Provider, logger zerolog.Logger, excluded []string) *Calculator {
	if excluded == nil {
		excluded = loyalty.DefaultExcluded
	}
	return &Calculator{Taxes: taxes, Logger: logger, Excluded: excluded}
}

// Calculate recomputes the breakdown from lines and the current tax rules. Errors are
// always *CalculationError and no partial breakdown is returned.
func (c *Calculator) Calculate(ctx context.Context, lines []CartLine, customer Customer, opts OrderOptions) (Breakdown, error) {
	start := time.Now()
	ctx, span := otel.Tracer("checkout").Start(ctx, "checkout.calculate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("checkout.lines", len(lines)),
		attribute.Bool("checkout.flat_tax_customer", customer.HasFlatTax),
		attribute.String("checkout.order_type", opts.OrderType),
	)

	b, err := c.calculate(ctx, lines, customer, opts)
	result := "ok"
	if err != nil {
		result = string(KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	} else {
		span.SetAttributes(attribute.String("checkout.final_total", pricing.Format(b.FinalTotal)))
	}
	obs.ObserveCalculation(result, time.Since(start))
	return b, err
}

func (c *Calculator) calculate(ctx context.Context, lines []CartLine, customer Customer, opts OrderOptions) (Breakdown, error) {
	if len(lines) == 0 {
		return Breakdown{}, fail(KindEmptyCart, "calculate", ErrEmptyCart)
	}
	orderType, fee, err := normalizeOptions(opts)
	if err != nil {
		return Breakdown{}, err
	}
	if c == nil || c.Taxes == nil {
		return Breakdown{}, fail(KindTaxStoreUnavailable, "calculate", fmt.Errorf("%w: no provider", flattax.ErrStoreUnavailable))
	}

	b := Breakdown{OrderType: orderType, FlatTaxLines: []FlatTaxLine{}}
	eligible := make([]loyalty.Line, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return Breakdown{}, fail(KindInvalidLine, "calculate", fmt.Errorf("%w: line %d quantity %d", ErrInvalidLine, i, line.Quantity))
		}
		if line.UnitPrice.IsNegative() {
			return Breakdown{}, fail(KindInvalidLine, "calculate", fmt.Errorf("%w: line %d unit price %s", ErrInvalidLine, i, line.UnitPrice))
		}
		lineCents, err := pricing.Extend(line.UnitPrice, line.Quantity)
		if err != nil {
			return Breakdown{}, fail(KindInvalidLine, "calculate", fmt.Errorf("%w: line %d: %w", ErrInvalidLine, i, err))
		}
		if b.ItemsSubtotal, err = pricing.Add(b.ItemsSubtotal, lineCents); err != nil {
			return Breakdown{}, fail(KindInvalidLine, "calculate", fmt.Errorf("%w: items subtotal: %w", ErrInvalidLine, err))
		}
		eligible = append(eligible, loyalty.Line{Category: line.Category, Subtotal: lineCents})

		if !customer.HasFlatTax || len(line.FlatTaxIDs) == 0 {
			continue
		}
		id := line.FlatTaxIDs[0]
		if len(line.FlatTaxIDs) > 1 {
			c.Logger.Debug().Str("product_id", line.ProductID).Int64("applied", id).
				Ints64("ignored", line.FlatTaxIDs[1:]).Msg("flat_tax_extra_ids_ignored")
		}
		rule, err := c.Taxes.Lookup(ctx, id)
		if err != nil {
			return Breakdown{}, fail(lookupKind(err), "flat tax lookup", err)
		}
		taxCents, err := pricing.Extend(rule.Amount, line.Quantity)
		if err != nil {
			return Breakdown{}, fail(KindInvalidLine, "flat tax", fmt.Errorf("%w: line %d: %w", ErrInvalidLine, i, err))
		}
		b.FlatTaxLines = append(b.FlatTaxLines, FlatTaxLine{
			ProductID: line.ProductID,
			FlatTaxID: rule.ID,
			Label:     rule.Label,
			Amount:    taxCents,
		})
		if b.FlatTaxTotal, err = pricing.Add(b.FlatTaxTotal, taxCents); err != nil {
			return Breakdown{}, fail(KindInvalidLine, "flat tax", fmt.Errorf("%w: flat tax total: %w", ErrInvalidLine, err))
		}
	}

	b.DeliveryFee = fee
	if b.SubtotalBeforeDelivery, err = pricing.Add(b.ItemsSubtotal, b.FlatTaxTotal); err != nil {
		return Breakdown{}, fail(KindInvalidLine, "calculate", fmt.Errorf("%w: subtotal: %w", ErrInvalidLine, err))
	}
	if b.SubtotalBeforeRedemption, err = pricing.Add(b.SubtotalBeforeDelivery, b.DeliveryFee); err != nil {
		return Breakdown{}, fail(KindInvalidLine, "calculate", fmt.Errorf("%w: subtotal: %w", ErrInvalidLine, err))
	}

	b.LoyaltyEligibleSubtotal = loyalty.EligibleSubtotal(eligible, c.Excluded)
	b.PointsEarned = loyalty.PointsEarned(b.LoyaltyEligibleSubtotal)

	if err := loyalty.ValidateRedemption(opts.RedeemPoints, b.SubtotalBeforeRedemption); err != nil {
		return Breakdown{}, fail(KindInvalidRedemption, "redeem", fmt.Errorf("%w: %d points against %s",
			err, opts.RedeemPoints, pricing.Format(b.SubtotalBeforeRedemption)))
	}
	b.PointsRedeemed = opts.RedeemPoints
	b.LoyaltyRedeemValue = loyalty.RedeemValue(opts.RedeemPoints)

	b.FinalTotal = b.SubtotalBeforeRedemption - b.LoyaltyRedeemValue
	if b.FinalTotal < 0 {
		c.Logger.Warn().Str("subtotal_before_redemption", pricing.Format(b.SubtotalBeforeRedemption)).
			Str("redeem_value", pricing.Format(b.LoyaltyRedeemValue)).Msg("checkout_final_total_clamped")
		obs.ObserveFinalTotalClamped()
		b.FinalTotal = 0
		b.Clamped = true
	}

	if err := Verify(b); err != nil {
		obs.ObserveInvariantViolation()
		c.Logger.Error().Err(err).Interface("breakdown", b).Msg("checkout_invariant_violation")
		return Breakdown{}, fail(KindInvariantViolation, "verify", err)
	}
	return b, nil
}

func normalizeOptions(opts OrderOptions) (string, pricing.Money, error) {
	orderType := strings.ToLower(strings.TrimSpace(opts.OrderType))
	switch orderType {
	case OrderTypePickup:
		return orderType, 0, nil
	case OrderTypeDelivery:
		if opts.DeliveryFee.IsNegative() {
			return "", 0, fail(KindInvalidLine, "options", fmt.Errorf("%w: delivery fee %s", ErrInvalidLine, opts.DeliveryFee))
		}
		fee, err := pricing.FromDecimal(opts.DeliveryFee)
		if err != nil {
			return "", 0, fail(KindInvalidLine, "options", fmt.Errorf("%w: delivery fee: %w", ErrInvalidLine, err))
		}
		return orderType, fee, nil
	default:
		return "", 0, fail(KindInvalidLine, "options", fmt.Errorf("%w: order type %q", ErrInvalidLine, opts.OrderType))
	}
}

// IsClientError reports whether err stems from caller input rather than configuration or state.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindEmptyCart, KindInvalidLine, KindInvalidRedemption:
		return true
	}
	return errors.Is(err, loyalty.ErrRedemptionCapExceeded)
}
