package enums

import "fmt"

// CouponSource records how a user coupon was obtained.
type CouponSource string

const (
	CouponSourceManual  CouponSource = "manual"
	CouponSourceWheel   CouponSource = "wheel"
	CouponSourceLoyalty CouponSource = "loyalty"
	CouponSourceGift    CouponSource = "gift"
)

var validCouponSources = []CouponSource{
	CouponSourceManual,
	CouponSourceWheel,
	CouponSourceLoyalty,
	CouponSourceGift,
}

// String implements fmt.Stringer.
func (c CouponSource) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponSource.
func (c CouponSource) IsValid() bool {
	for _, candidate := range validCouponSources {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponSource converts raw input into a CouponSource.
func ParseCouponSource(value string) (CouponSource, error) {
	for _, candidate := range validCouponSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon source %q", value)
}
