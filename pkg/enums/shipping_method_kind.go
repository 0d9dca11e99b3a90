package enums

import "fmt"

// ShippingMethodKind classifies WooCommerce shipping methods at decode time.
type ShippingMethodKind string

const (
	ShippingMethodKindHome  ShippingMethodKind = "home"
	ShippingMethodKindRelay ShippingMethodKind = "relay"
	ShippingMethodKindFree  ShippingMethodKind = "free"
)

var validShippingMethodKinds = []ShippingMethodKind{
	ShippingMethodKindHome,
	ShippingMethodKindRelay,
	ShippingMethodKindFree,
}

// String implements fmt.Stringer.
func (s ShippingMethodKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingMethodKind.
func (s ShippingMethodKind) IsValid() bool {
	for _, candidate := range validShippingMethodKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingMethodKind converts raw input into a ShippingMethodKind.
func ParseShippingMethodKind(value string) (ShippingMethodKind, error) {
	for _, candidate := range validShippingMethodKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping method kind %q", value)
}
