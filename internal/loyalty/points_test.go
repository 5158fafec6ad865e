package loyalty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/pricing"
)

func TestEligibleSubtotalSkipsExcludedCategories(t *testing.T) {
	lines := []Line{
		{Category: "Tobacco", Subtotal: 180000},
		{Category: "snacks", Subtotal: 5000},
		{Category: " TOBACCO ", Subtotal: 100},
		{Category: "", Subtotal: 250},
	}
	require.Equal(t, int64(5250), EligibleSubtotal(lines, DefaultExcluded))
	require.Equal(t, int64(185350), EligibleSubtotal(lines, nil))
}

func TestPointsEarnedFloors(t *testing.T) {
	require.Equal(t, int64(100), PointsEarned(5000))
	require.Equal(t, int64(2), PointsEarned(199))
	require.Equal(t, int64(0), PointsEarned(49))
	require.Equal(t, int64(0), PointsEarned(-10))
}

func TestValidateRedemption(t *testing.T) {
	require.NoError(t, ValidateRedemption(0, 0))
	require.NoError(t, ValidateRedemption(500, 500))
	require.ErrorIs(t, ValidateRedemption(501, 500), ErrInvalidRedemption)
	require.ErrorIs(t, ValidateRedemption(-1, 500), ErrInvalidRedemption)
	require.Equal(t, int64(500), RedeemValue(500))
}

func TestRedemptionCap(t *testing.T) {
	require.Equal(t, int64(5000), MaxRedeemable(10000, DefaultMaxRedeemBps))
	require.Equal(t, int64(10000), MaxRedeemable(10000, 20000))
	require.Equal(t, int64(0), MaxRedeemable(10000, 0))
	require.Equal(t, int64(5000), MaxRedeemable(10001, DefaultMaxRedeemBps))
	require.Equal(t, pricing.MaxCents/2, MaxRedeemable(pricing.MaxCents, DefaultMaxRedeemBps))
	require.NoError(t, CheckCap(5000, 10000, DefaultMaxRedeemBps))
	require.ErrorIs(t, CheckCap(5001, 10000, DefaultMaxRedeemBps), ErrRedemptionCapExceeded)
}
