package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartLineUnitPricePrefersVariation(t *testing.T) {
	vp := decimal.RequireFromString("12.50")
	img := "https://cdn.example/var.jpg"
	line := CartLine{ProductID: 1, Price: decimal.RequireFromString("10"), Quantity: 3, VariationID: 7, VariationPrice: &vp, VariationImage: &img, Image: "base.jpg"}

	if !line.UnitPrice().Equal(vp) {
		t.Fatalf("expected variation price, got %s", line.UnitPrice())
	}
	if !line.LineTotal().Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("unexpected line total %s", line.LineTotal())
	}
	if line.ImageURL() != img {
		t.Fatalf("expected variation image")
	}

	cleared := line.ClearVariation()
	if cleared.VariationID != 0 || cleared.VariationPrice != nil || cleared.VariationImage != nil {
		t.Fatalf("variation fields not cleared: %+v", cleared)
	}
	if !cleared.UnitPrice().Equal(decimal.RequireFromString("10")) || cleared.ImageURL() != "base.jpg" {
		t.Fatalf("cleared line should fall back to product price and image")
	}
	if line.VariationID != 7 {
		t.Fatalf("ClearVariation must not mutate the receiver")
	}
}

func TestShippingAddressFullName(t *testing.T) {
	if got := (ShippingAddress{FirstName: "Jeanne", LastName: "Martin"}).FullName(); got != "Jeanne Martin" {
		t.Fatalf("unexpected full name %q", got)
	}
	if got := (ShippingAddress{LastName: "Martin"}).FullName(); got != "Martin" {
		t.Fatalf("unexpected full name %q", got)
	}
}
