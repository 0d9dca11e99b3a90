package types

import (
	"github.com/shopspring/decimal"
)

// CartLine is one product line of a cart, shared by the local (anonymous)
// cart, the server cart and checkout. VariationID 0 means no variation.
type CartLine struct {
	ProductID          int64             `json:"product_id" validate:"required,gt=0"`
	VariationID        int64             `json:"variation_id,omitempty" validate:"gte=0"`
	Name               string            `json:"name" validate:"required,max=500"`
	Slug               string            `json:"slug,omitempty" validate:"max=500"`
	Price              decimal.Decimal   `json:"price"`
	Image              string            `json:"image,omitempty"`
	Quantity           int               `json:"quantity" validate:"required,gt=0,lte=999"`
	VariationPrice     *decimal.Decimal  `json:"variation_price,omitempty"`
	VariationImage     *string           `json:"variation_image,omitempty"`
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
}

// UnitPrice returns the variation price when present, the product price otherwise.
func (l CartLine) UnitPrice() decimal.Decimal {
	if l.VariationPrice != nil {
		return *l.VariationPrice
	}
	return l.Price
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ImageURL prefers the variation image.
func (l CartLine) ImageURL() string {
	if l.VariationImage != nil && *l.VariationImage != "" {
		return *l.VariationImage
	}
	return l.Image
}

// ClearVariation drops every variation-specific field.
func (l CartLine) ClearVariation() CartLine {
	l.VariationID = 0
	l.VariationPrice = nil
	l.VariationImage = nil
	l.SelectedAttributes = nil
	return l
}
