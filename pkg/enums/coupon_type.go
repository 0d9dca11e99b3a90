package enums

import "fmt"

// CouponType is the discount template kind of a coupon_types row.
type CouponType string

const (
	CouponTypeAmount       CouponType = "discount_amount"
	CouponTypePercentage   CouponType = "discount_percentage"
	CouponTypeFreeDelivery CouponType = "free_delivery"
)

var validCouponTypes = []CouponType{
	CouponTypeAmount,
	CouponTypePercentage,
	CouponTypeFreeDelivery,
}

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponType.
func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	for _, candidate := range validCouponTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
