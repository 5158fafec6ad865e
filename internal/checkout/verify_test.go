package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validBreakdown() Breakdown {
	return Breakdown{
		OrderType:                OrderTypeDelivery,
		ItemsSubtotal:            10000,
		FlatTaxLines:             []FlatTaxLine{{FlatTaxID: 5, Label: cookCountyLabel, Amount: 3600}},
		FlatTaxTotal:             3600,
		SubtotalBeforeDelivery:   13600,
		DeliveryFee:              500,
		SubtotalBeforeRedemption: 14100,
		LoyaltyEligibleSubtotal:  3300,
		PointsEarned:             66,
		PointsRedeemed:           100,
		LoyaltyRedeemValue:       100,
		FinalTotal:               14000,
	}
}

func TestVerifyAcceptsConsistentBreakdown(t *testing.T) {
	require.NoError(t, Verify(validBreakdown()))
}

func TestVerifyToleratesOneCent(t *testing.T) {
	b := validBreakdown()
	b.FinalTotal++
	require.NoError(t, Verify(b))

	b.FinalTotal++
	require.ErrorIs(t, Verify(b), ErrInvariantViolation)
}

func TestVerifyListsEveryFailure(t *testing.T) {
	b := validBreakdown()
	b.SubtotalBeforeDelivery = 20000
	b.LoyaltyEligibleSubtotal = 50000
	b.FlatTaxTotal = 10

	err := Verify(b)
	require.ErrorIs(t, err, ErrInvariantViolation)
	var ve *VerificationError
	require.ErrorAs(t, err, &ve)
	require.GreaterOrEqual(t, len(ve.Failed), 4)
	require.Contains(t, err.Error(), "exceeds itemsSubtotal")
	require.Contains(t, err.Error(), "pointsEarned")
	require.Contains(t, err.Error(), "sum of flat tax lines")
}

func TestVerifyRejectsNegativeMoney(t *testing.T) {
	b := Breakdown{ItemsSubtotal: -100, SubtotalBeforeDelivery: -100, SubtotalBeforeRedemption: -100, FinalTotal: 0}
	err := Verify(b)
	require.ErrorIs(t, err, ErrInvariantViolation)
	require.Contains(t, err.Error(), "itemsSubtotal is negative")
}
