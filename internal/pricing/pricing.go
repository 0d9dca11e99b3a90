// Package pricing computes cart totals for checkout. Prices are tax-inclusive:
// VAT is back-calculated from the total and never added on top.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

var (
	// MinimumOrder applies to the subtotal before shipping and insurance.
	MinimumOrder = decimal.NewFromInt(10)

	vatNumerator   = decimal.NewFromInt(20)
	vatDenominator = decimal.NewFromInt(120)
	hundred        = decimal.NewFromInt(100)

	insurancePrices = map[enums.InsuranceTier]decimal.Decimal{
		enums.InsuranceTierNone:     decimal.Zero,
		enums.InsuranceTierStandard: decimal.RequireFromString("2.99"),
		enums.InsuranceTierPremium:  decimal.RequireFromString("4.99"),
	}
)

// Coupon is the part of a user coupon that affects pricing.
type Coupon struct {
	Type  enums.CouponType
	Value decimal.Decimal
}

func (c *Coupon) isFreeDelivery() bool {
	return c != nil && c.Type == enums.CouponTypeFreeDelivery
}

// Selection is the cart plus the choices made on the checkout page.
// MethodCost is nil when no shipping method is selected.
type Selection struct {
	Lines      []types.CartLine
	MethodCost *decimal.Decimal
	Coupon     *Coupon
	Insurance  enums.InsuranceTier
}

func Subtotal(lines []types.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ShippingCost is zero under a free_delivery coupon or when no method is selected.
func ShippingCost(methodCost *decimal.Decimal, coupon *Coupon) decimal.Decimal {
	if methodCost == nil || coupon.isFreeDelivery() {
		return decimal.Zero
	}
	return *methodCost
}

func InsuranceCost(tier enums.InsuranceTier) (decimal.Decimal, error) {
	if tier == "" {
		return decimal.Zero, nil
	}
	price, ok := insurancePrices[tier]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown insurance tier %q", tier)
	}
	return price, nil
}

// Discount never exceeds the subtotal for amount and percentage coupons. A
// free_delivery coupon reports the raw method cost it waives.
func Discount(subtotal decimal.Decimal, methodCost *decimal.Decimal, coupon *Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch coupon.Type {
	case enums.CouponTypeAmount:
		discount = decimal.Min(coupon.Value, subtotal)
	case enums.CouponTypePercentage:
		discount = decimal.Min(subtotal.Mul(coupon.Value).Div(hundred), subtotal)
	case enums.CouponTypeFreeDelivery:
		if methodCost != nil {
			discount = *methodCost
		}
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// SubtotalAfterDiscount subtracts item discounts only. The free_delivery
// discount is already realised by a zero ShippingCost.
func SubtotalAfterDiscount(subtotal, discount decimal.Decimal, coupon *Coupon) decimal.Decimal {
	if coupon == nil || coupon.isFreeDelivery() {
		return subtotal
	}
	return subtotal.Sub(discount)
}

// Tax back-calculates 20% VAT embedded in base.
func Tax(base decimal.Decimal) decimal.Decimal {
	return base.Mul(vatNumerator).Div(vatDenominator)
}

func Total(subtotalAfterDiscount, shipping, insurance decimal.Decimal) decimal.Decimal {
	return subtotalAfterDiscount.Add(shipping).Add(insurance)
}

func MeetsMinimum(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(MinimumOrder)
}

// Shortfall is the amount still needed to reach MinimumOrder, zero when met.
func Shortfall(subtotal decimal.Decimal) decimal.Decimal {
	if MeetsMinimum(subtotal) {
		return decimal.Zero
	}
	return MinimumOrder.Sub(subtotal)
}

// BatchPaymentAmount charges shipping only when opening a new batch.
func BatchPaymentAmount(subtotal, shipping decimal.Decimal, appending bool) decimal.Decimal {
	if appending {
		return subtotal
	}
	return subtotal.Add(shipping)
}

// MinorUnits converts an amount to cents for Stripe.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// Breakdown is the full quote shown on the checkout page.
type Breakdown struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Discount              decimal.Decimal `json:"discount"`
	SubtotalAfterDiscount decimal.Decimal `json:"subtotal_after_discount"`
	Shipping              decimal.Decimal `json:"shipping"`
	Insurance             decimal.Decimal `json:"insurance"`
	Tax                   decimal.Decimal `json:"tax"`
	Total                 decimal.Decimal `json:"total"`
	MinimumMet            bool            `json:"minimum_met"`
	Shortfall             decimal.Decimal `json:"shortfall"`
}

// Calculate runs every pricing rule over sel. Tax is rounded to cents.
func Calculate(sel Selection) (Breakdown, error) {
	insurance, err := InsuranceCost(sel.Insurance)
	if err != nil {
		return Breakdown{}, err
	}

	subtotal := Subtotal(sel.Lines)
	discount := Discount(subtotal, sel.MethodCost, sel.Coupon)
	after := SubtotalAfterDiscount(subtotal, discount, sel.Coupon)
	shipping := ShippingCost(sel.MethodCost, sel.Coupon)
	total := Total(after, shipping, insurance)

	return Breakdown{
		Subtotal:              subtotal,
		Discount:              discount,
		SubtotalAfterDiscount: after,
		Shipping:              shipping,
		Insurance:             insurance,
		Tax:                   Tax(total).Round(2),
		Total:                 total,
		MinimumMet:            MeetsMinimum(subtotal),
		Shortfall:             Shortfall(subtotal),
	}, nil
}
