package coupons

import (
	"strings"

	"github.com/google/uuid"
)

const codeLength = 10

// NewCode issues a coupon code such as WHEEL-3F9A0C71B2. Uniqueness is
// enforced by uniq_user_coupons_code; callers retry on violation.
func NewCode(prefix string) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return raw[:codeLength]
	}
	return prefix + "-" + raw[:codeLength]
}
