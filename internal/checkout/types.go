package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/pricing"
)

// Order types accepted by the calculator.
const (
	OrderTypePickup   = "pickup"
	OrderTypeDelivery = "delivery"
)

// CartLine is one priced product line. UnitPrice is the tier price resolved upstream.
type CartLine struct {
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	Category   string
	FlatTaxIDs []int64
}

// Customer carries the attributes that affect the calculation.
type Customer struct {
	HasFlatTax bool
	Tier       string
}

// OrderOptions describe fulfilment and loyalty redemption.
type OrderOptions struct {
	OrderType    string
	DeliveryFee  decimal.Decimal
	RedeemPoints int64
}

// FlatTaxLine is one applied flat tax.
type FlatTaxLine struct {
	ProductID string
	FlatTaxID int64
	Label     string
	Amount    pricing.Money
}

// Breakdown is a verified checkout result. Money fields are in cents.
type Breakdown struct {
	OrderType                string
	ItemsSubtotal            pricing.Money
	FlatTaxLines             []FlatTaxLine
	FlatTaxTotal             pricing.Money
	SubtotalBeforeDelivery   pricing.Money
	DeliveryFee              pricing.Money
	SubtotalBeforeRedemption pricing.Money
	LoyaltyEligibleSubtotal  pricing.Money
	PointsEarned             int64
	PointsRedeemed           int64
	LoyaltyRedeemValue       pricing.Money
	FinalTotal               pricing.Money
	Clamped                  bool
}

type flatTaxLineJSON struct {
	ProductID string      `json:"productId,omitempty"`
	FlatTaxID int64       `json:"flatTaxId"`
	Label     string      `json:"label"`
	Amount    json.Number `json:"amount"`
}

type breakdownJSON struct {
	OrderType                string            `json:"orderType"`
	ItemsSubtotal            json.Number       `json:"itemsSubtotal"`
	FlatTaxLines             []flatTaxLineJSON `json:"flatTaxLines"`
	FlatTaxTotal             json.Number       `json:"flatTaxTotal"`
	SubtotalBeforeDelivery   json.Number       `json:"subtotalBeforeDelivery"`
	DeliveryFee              json.Number       `json:"deliveryFee"`
	SubtotalBeforeRedemption json.Number       `json:"subtotalBeforeRedemption"`
	LoyaltyEligibleSubtotal  json.Number       `json:"loyaltyEligibleSubtotal"`
	PointsEarned             int64             `json:"pointsEarned"`
	PointsRedeemed           int64             `json:"pointsRedeemed"`
	LoyaltyRedeemValue       json.Number       `json:"loyaltyRedeemValue"`
	FinalTotal               json.Number       `json:"finalTotal"`
	Clamped                  bool              `json:"clamped,omitempty"`
}

func money(m pricing.Money) json.Number {
	return json.Number(pricing.Format(m))
}

func parseMoney(field string, n json.Number) (pricing.Money, error) {
	if n == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	m, err := pricing.FromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return m, nil
}

// MarshalJSON renders money as fixed two-decimal numbers.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	out := breakdownJSON{
		OrderType:                b.OrderType,
		ItemsSubtotal:            money(b.ItemsSubtotal),
		FlatTaxLines:             make([]flatTaxLineJSON, 0, len(b.FlatTaxLines)),
		FlatTaxTotal:             money(b.FlatTaxTotal),
		SubtotalBeforeDelivery:   money(b.SubtotalBeforeDelivery),
		DeliveryFee:              money(b.DeliveryFee),
		SubtotalBeforeRedemption: money(b.SubtotalBeforeRedemption),
		LoyaltyEligibleSubtotal:  money(b.LoyaltyEligibleSubtotal),
		PointsEarned:             b.PointsEarned,
		PointsRedeemed:           b.PointsRedeemed,
		LoyaltyRedeemValue:       money(b.LoyaltyRedeemValue),
		FinalTotal:               money(b.FinalTotal),
		Clamped:                  b.Clamped,
	}
	for _, l := range b.FlatTaxLines {
		out.FlatTaxLines = append(out.FlatTaxLines, flatTaxLineJSON{
			ProductID: l.ProductID,
			FlatTaxID: l.FlatTaxID,
			Label:     l.Label,
			Amount:    money(l.Amount),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the representation produced by MarshalJSON.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var in breakdownJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	fields := []struct {
		name string
		src  json.Number
		dst  *pricing.Money
	}{
		{"itemsSubtotal", in.ItemsSubtotal, &b.ItemsSubtotal},
		{"flatTaxTotal", in.FlatTaxTotal, &b.FlatTaxTotal},
		{"subtotalBeforeDelivery", in.SubtotalBeforeDelivery, &b.SubtotalBeforeDelivery},
		{"deliveryFee", in.DeliveryFee, &b.DeliveryFee},
		{"subtotalBeforeRedemption", in.SubtotalBeforeRedemption, &b.SubtotalBeforeRedemption},
		{"loyaltyEligibleSubtotal", in.LoyaltyEligibleSubtotal, &b.LoyaltyEligibleSubtotal},
		{"loyaltyRedeemValue", in.LoyaltyRedeemValue, &b.LoyaltyRedeemValue},
		{"finalTotal", in.FinalTotal, &b.FinalTotal},
	}
	for _, f := range fields {
		v, err := parseMoney(f.name, f.src)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	b.OrderType = in.OrderType
	b.PointsEarned = in.PointsEarned
	b.PointsRedeemed = in.PointsRedeemed
	b.Clamped = in.Clamped
	b.FlatTaxLines = make([]FlatTaxLine, 0, len(in.FlatTaxLines))
	for _, l := range in.FlatTaxLines {
		amt, err := parseMoney("flatTaxLines.amount", l.Amount)
		if err != nil {
			return err
		}
		b.FlatTaxLines = append(b.FlatTaxLines, FlatTaxLine{
			ProductID: l.ProductID,
			FlatTaxID: l.FlatTaxID,
			Label:     l.Label,
			Amount:    amt,
		})
	}
	return nil
}
