// Package loyalty computes loyalty points earned and redeemed against a checkout.
package loyalty

import (
	"errors"
	"strings"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/pricing"
)

const (
	// PointsPerDollar is the earn rate on eligible spend.
	PointsPerDollar = 2
	// CentsPerPoint is the redemption value of a single point.
	CentsPerPoint = 1
	// DefaultMaxRedeemBps caps redemption at half the pre-redemption subtotal.
	DefaultMaxRedeemBps = 5000
)

// DefaultExcluded lists categories that never earn points.
var DefaultExcluded = []string{"tobacco"}

var (
	// ErrInvalidRedemption is returned when the requested points are negative or exceed the order value.
	ErrInvalidRedemption = errors.New("invalid loyalty redemption")
	// ErrRedemptionCapExceeded indicates the request is above the configured share of the order.
	ErrRedemptionCapExceeded = errors.New("loyalty redemption above allowed share")
)

// Line is the loyalty view of a cart line.
type Line struct {
	Category string
	Subtotal pricing.Money
}

// IsEligible reports whether a category earns points. Matching is case-insensitive.
func IsEligible(category string, excluded []string) bool {
	c := strings.TrimSpace(category)
	for _, ex := range excluded {
		if strings.EqualFold(c, strings.TrimSpace(ex)) {
			return false
		}
	}
	return true
}

// EligibleSubtotal sums line subtotals whose category earns points.
func EligibleSubtotal(lines []Line, excluded []string) pricing.Money {
	var total pricing.Money
	for _, l := range lines {
		if IsEligible(l.Category, excluded) {
			total += l.Subtotal
		}
	}
	return total
}

// PointsEarned returns floor(eligible dollars * PointsPerDollar).
func PointsEarned(eligible pricing.Money) int64 {
	if eligible <= 0 {
		return 0
	}
	return eligible * PointsPerDollar / 100
}

// RedeemValue converts points to cents.
func RedeemValue(points int64) pricing.Money {
	return points * CentsPerPoint
}

// ValidateRedemption rejects negative requests and requests worth more than available.
func ValidateRedemption(points int64, available pricing.Money) error {
	if points < 0 {
		return ErrInvalidRedemption
	}
	if RedeemValue(points) > available {
		return ErrInvalidRedemption
	}
	return nil
}

// MaxRedeemable returns the most points redeemable against subtotal under a basis-point cap.
func MaxRedeemable(subtotal pricing.Money, bps int) int64 {
	if subtotal <= 0 || bps <= 0 {
		return 0
	}
	if bps > 10000 {
		bps = 10000
	}
	// split so subtotal*bps cannot overflow for amounts near pricing.MaxCents
	b := int64(bps)
	capped := subtotal/10000*b + subtotal%10000*b/10000
	return capped / CentsPerPoint
}

// CheckCap returns ErrRedemptionCapExceeded when points exceed MaxRedeemable.
func CheckCap(points int64, subtotal pricing.Money, bps int) error {
	if points > MaxRedeemable(subtotal, bps) {
		return ErrRedemptionCapExceeded
	}
	return nil
}
