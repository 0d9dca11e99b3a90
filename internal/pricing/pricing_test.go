package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func line(price string, qty int) types.CartLine {
	return types.CartLine{ProductID: 1, Name: "bougie", Price: d(price), Quantity: qty}
}

func TestDiscountAmountNeverExceedsSubtotal(t *testing.T) {
	subtotals := []string{"0", "4.99", "10", "25.50", "120"}
	values := []string{"0", "5", "10", "30", "1000"}
	for _, s := range subtotals {
		for _, v := range values {
			got := Discount(d(s), nil, &Coupon{Type: enums.CouponTypeAmount, Value: d(v)})
			if got.GreaterThan(d(s)) {
				t.Fatalf("discount %s exceeds subtotal %s (value %s)", got, s, v)
			}
		}
	}
}

func TestDiscountPercentage(t *testing.T) {
	got := Discount(d("80"), nil, &Coupon{Type: enums.CouponTypePercentage, Value: d("15")})
	if !got.Equal(d("12")) {
		t.Fatalf("expected 12, got %s", got)
	}
	capped := Discount(d("80"), nil, &Coupon{Type: enums.CouponTypePercentage, Value: d("150")})
	if !capped.Equal(d("80")) {
		t.Fatalf("expected discount capped at subtotal, got %s", capped)
	}
}

func TestFreeDeliveryNetsShippingToZero(t *testing.T) {
	coupon := &Coupon{Type: enums.CouponTypeFreeDelivery}
	method := dp("5.90")

	if !ShippingCost(method, coupon).IsZero() {
		t.Fatalf("expected free shipping")
	}
	if got := Discount(d("40"), method, coupon); !got.Equal(d("5.90")) {
		t.Fatalf("expected discount equal to method cost, got %s", got)
	}

	b, err := Calculate(Selection{Lines: []types.CartLine{line("20", 2)}, MethodCost: method, Coupon: coupon})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !b.Total.Equal(d("40")) {
		t.Fatalf("free delivery must not reduce item total, got %s", b.Total)
	}
	if !b.SubtotalAfterDiscount.Equal(d("40")) {
		t.Fatalf("free delivery discount must not be subtracted from subtotal, got %s", b.SubtotalAfterDiscount)
	}
}

func TestShippingCostWithoutMethod(t *testing.T) {
	if !ShippingCost(nil, nil).IsZero() {
		t.Fatalf("no method selected should cost nothing")
	}
	if got := ShippingCost(dp("4.50"), &Coupon{Type: enums.CouponTypeAmount, Value: d("3")}); !got.Equal(d("4.50")) {
		t.Fatalf("amount coupon should not waive shipping, got %s", got)
	}
}

func TestTaxBackCalculation(t *testing.T) {
	base := d("57.99")
	tax := Tax(base)
	if !tax.Equal(d("9.665")) {
		t.Fatalf("expected exact tax 9.665, got %s", tax)
	}
	exclusive := base.Sub(tax)
	if !exclusive.Mul(d("1.2")).Sub(base).Abs().LessThan(d("0.0001")) {
		t.Fatalf("round trip mismatch: exclusive %s", exclusive)
	}
}

func TestMinimumOrderIndependentOfShippingAndInsurance(t *testing.T) {
	cases := []struct {
		subtotal string
		met      bool
	}{
		{"9.99", false},
		{"10", true},
		{"10.01", true},
		{"0", false},
	}
	for _, tc := range cases {
		b, err := Calculate(Selection{
			Lines:      []types.CartLine{line(tc.subtotal, 1)},
			MethodCost: dp("25"),
			Insurance:  enums.InsuranceTierPremium,
		})
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
		if b.MinimumMet != tc.met {
			t.Fatalf("subtotal %s: expected minimum met %v", tc.subtotal, tc.met)
		}
	}
	if got := Shortfall(d("7.25")); !got.Equal(d("2.75")) {
		t.Fatalf("expected shortfall 2.75, got %s", got)
	}
}

func TestBatchPaymentAmount(t *testing.T) {
	if got := BatchPaymentAmount(d("42"), d("6.50"), false); !got.Equal(d("48.50")) {
		t.Fatalf("create should include shipping, got %s", got)
	}
	if got := BatchPaymentAmount(d("42"), d("6.50"), true); !got.Equal(d("42")) {
		t.Fatalf("append must not include shipping, got %s", got)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := map[string]int64{"57.99": 5799, "0.015": 2, "10": 1000, "19.994": 1999}
	for in, want := range cases {
		if got := MinorUnits(d(in)); got != want {
			t.Fatalf("MinorUnits(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestInsuranceCost(t *testing.T) {
	if got, _ := InsuranceCost(enums.InsuranceTierStandard); !got.Equal(d("2.99")) {
		t.Fatalf("unexpected standard price %s", got)
	}
	if got, _ := InsuranceCost(""); !got.IsZero() {
		t.Fatalf("empty tier should cost nothing")
	}
	if _, err := InsuranceCost("gold"); err == nil {
		t.Fatalf("expected unknown tier to fail")
	}
}

func TestCalculateEndToEnd(t *testing.T) {
	b, err := Calculate(Selection{
		Lines:      []types.CartLine{line("20", 2), line("10", 1)},
		MethodCost: dp("5"),
		Insurance:  enums.InsuranceTierStandard,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !b.Subtotal.Equal(d("50")) {
		t.Fatalf("unexpected subtotal %s", b.Subtotal)
	}
	if !b.Total.Equal(d("57.99")) {
		t.Fatalf("expected total 57.99, got %s", b.Total)
	}
	if !b.Tax.Equal(d("9.67")) {
		t.Fatalf("expected tax rounded to 9.67, got %s", b.Tax)
	}
	if !b.MinimumMet || !b.Shortfall.IsZero() {
		t.Fatalf("minimum should be met")
	}
}

func TestCalculateRejectsUnknownInsurance(t *testing.T) {
	if _, err := Calculate(Selection{Insurance: "gold"}); err == nil {
		t.Fatalf("expected error")
	}
}
