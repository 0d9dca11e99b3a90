package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber issues CMD-YYYYMMDD-XXXXXXXX. The suffix comes from a random
// uuid; the unique index on order_number is authoritative.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "CMD-" + now.UTC().Format("20060102") + "-" + suffix
}
