package checkout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/loyalty"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/pricing"
)

// VerificationError lists every check a breakdown failed.
type VerificationError struct {
	Failed []string
}

func (e *VerificationError) Error() string {
	return ErrInvariantViolation.Error() + ": " + strings.Join(e.Failed, "; ")
}

// Is makes errors.Is(err, ErrInvariantViolation) hold.
func (e *VerificationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// Verify checks the arithmetic relationships of b at the currency boundary with a
// tolerance of one cent. It returns nil or a *VerificationError.
func Verify(b Breakdown) error {
	var failed []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			failed = append(failed, fmt.Sprintf(format, args...))
		}
	}
	d := pricing.ToDecimal

	items := d(b.ItemsSubtotal)
	flat := d(b.FlatTaxTotal)
	sbd := d(b.SubtotalBeforeDelivery)
	fee := d(b.DeliveryFee)
	sbr := d(b.SubtotalBeforeRedemption)
	eligible := d(b.LoyaltyEligibleSubtotal)
	redeem := d(b.LoyaltyRedeemValue)
	final := d(b.FinalTotal)

	check(pricing.WithinCent(sbd, items.Add(flat)),
		"subtotalBeforeDelivery %s != itemsSubtotal %s + flatTaxTotal %s", sbd.StringFixed(2), items.StringFixed(2), flat.StringFixed(2))

	expectedFinal := decimal.Max(decimal.Zero, sbd.Add(fee).Sub(redeem))
	check(pricing.WithinCent(final, expectedFinal),
		"finalTotal %s != max(0, %s + %s - %s)", final.StringFixed(2), sbd.StringFixed(2), fee.StringFixed(2), redeem.StringFixed(2))

	check(eligible.LessThanOrEqual(items.Add(pricing.OneCent)),
		"loyaltyEligibleSubtotal %s exceeds itemsSubtotal %s", eligible.StringFixed(2), items.StringFixed(2))

	expectedPoints := eligible.Mul(decimal.NewFromInt(loyalty.PointsPerDollar)).Floor().IntPart()
	check(b.PointsEarned == expectedPoints,
		"pointsEarned %d != floor(%s * %d)", b.PointsEarned, eligible.StringFixed(2), loyalty.PointsPerDollar)

	var lines decimal.Decimal
	for _, l := range b.FlatTaxLines {
		lines = lines.Add(d(l.Amount))
		check(l.Amount >= 0, "flat tax %q is negative", l.Label)
	}
	check(pricing.WithinCent(flat, lines),
		"flatTaxTotal %s != sum of flat tax lines %s", flat.StringFixed(2), lines.StringFixed(2))

	check(pricing.WithinCent(sbr, sbd.Add(fee)),
		"subtotalBeforeRedemption %s != %s + deliveryFee %s", sbr.StringFixed(2), sbd.StringFixed(2), fee.StringFixed(2))

	check(pricing.WithinCent(redeem, d(loyalty.RedeemValue(b.PointsRedeemed))),
		"loyaltyRedeemValue %s != %d points", redeem.StringFixed(2), b.PointsRedeemed)

	for name, v := range map[string]pricing.Money{
		"itemsSubtotal":           b.ItemsSubtotal,
		"flatTaxTotal":            b.FlatTaxTotal,
		"deliveryFee":             b.DeliveryFee,
		"loyaltyEligibleSubtotal": b.LoyaltyEligibleSubtotal,
		"loyaltyRedeemValue":      b.LoyaltyRedeemValue,
		"finalTotal":              b.FinalTotal,
	} {
		check(v >= 0, "%s is negative", name)
	}

	if len(failed) == 0 {
		return nil
	}
	sort.Strings(failed)
	return &VerificationError{Failed: failed}
}
