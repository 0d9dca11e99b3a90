package enums

import "fmt"

// InsuranceTier selects the optional shipment insurance.
type InsuranceTier string

const (
	InsuranceTierNone     InsuranceTier = "none"
	InsuranceTierStandard InsuranceTier = "standard"
	InsuranceTierPremium  InsuranceTier = "premium"
)

var validInsuranceTiers = []InsuranceTier{
	InsuranceTierNone,
	InsuranceTierStandard,
	InsuranceTierPremium,
}

// String implements fmt.Stringer.
func (i InsuranceTier) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InsuranceTier.
func (i InsuranceTier) IsValid() bool {
	for _, candidate := range validInsuranceTiers {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInsuranceTier converts raw input into a InsuranceTier.
func ParseInsuranceTier(value string) (InsuranceTier, error) {
	for _, candidate := range validInsuranceTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid insurance tier %q", value)
}
