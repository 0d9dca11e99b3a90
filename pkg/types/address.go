package types

import "strings"

// ShippingAddress is the address snapshot stored on orders and sent to WooCommerce.
type ShippingAddress struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
}

func (a ShippingAddress) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// RelayPoint is a Mondial Relay pickup location chosen instead of home delivery.
type RelayPoint struct {
	ID         string `json:"id" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=200"`
	Address    string `json:"address" validate:"max=300"`
	PostalCode string `json:"postal_code" validate:"max=16"`
	City       string `json:"city" validate:"max=120"`
	Country    string `json:"country" validate:"max=2"`
}
