package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/internal/accounts"
	"github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/internal/checkoutoptions"
	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/orders"
	"github.com/angelmondragon/boutique-backend/internal/pricing"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

const (
	PathBatchCreate = "batch_create"
	PathBatchAppend = "batch_append"
	PathDirect      = "direct"

	pendingDeliveriesRoute  = "/account/pending-deliveries"
	confirmationRoutePrefix = "/checkout/confirmation/"

	directPaymentMethod      = "bacs"
	directPaymentMethodTitle = "Virement bancaire"
	alreadyPaidShippingTitle = "Livraison déjà payée"
)

// Gate reasons reported in details.reason, in evaluation order.
const (
	ReasonAccountBlocked         = "account_blocked"
	ReasonCartEmpty              = "cart_empty"
	ReasonMinimumNotMet          = "minimum_not_met"
	ReasonAddressRequired        = "address_required"
	ReasonShippingMethodRequired = "shipping_method_required"
	ReasonRelayPointRequired     = "relay_point_required"
	ReasonPaymentMethodRequired  = "payment_method_required"
	ReasonCouponUnavailable      = "coupon_unavailable"
)

// ReasonCheckoutInProgress rejects a submission while another one of the same
// user holds the checkout lock. The client may retry.
const ReasonCheckoutInProgress = "checkout_in_progress"

// Selection is what the customer chose on the checkout page.
type Selection struct {
	AddressID        *uuid.UUID          `json:"address_id,omitempty"`
	ShippingMethodID string              `json:"shipping_method_id,omitempty" validate:"max=64"`
	PaymentMethodID  string              `json:"payment_method_id,omitempty" validate:"max=64"`
	RelayPoint       *types.RelayPoint   `json:"relay_point,omitempty" validate:"omitempty"`
	CouponID         *uuid.UUID          `json:"coupon_id,omitempty"`
	Insurance        enums.InsuranceTier `json:"insurance,omitempty"`
	UseDeliveryBatch bool                `json:"use_delivery_batch"`
	CustomerNote     string              `json:"customer_note,omitempty" validate:"max=1000"`
}

// SubmitRequest is a checkout submission.
type SubmitRequest struct {
	Selection
	IdempotencyKey string `json:"-"`
}

// Quote is the priced selection, with the amount charged on the batch path.
type Quote struct {
	Breakdown      pricing.Breakdown           `json:"breakdown"`
	Lines          []types.CartLine            `json:"lines"`
	ShippingMethod *woocommerce.ShippingMethod `json:"shipping_method,omitempty"`
	Coupon         *coupons.Coupon             `json:"coupon,omitempty"`
	ActiveBatch    *batches.BatchDTO           `json:"active_batch,omitempty"`
	BatchPayment   *BatchPayment               `json:"batch_payment,omitempty"`
}

// BatchPayment is what the batch path charges: shipping only when a new batch is opened.
type BatchPayment struct {
	Appending bool            `json:"appending"`
	Shipping  decimal.Decimal `json:"shipping"`
	Amount    decimal.Decimal `json:"amount"`
}

// Context is everything the checkout page loads on entry.
type Context struct {
	Cart        []types.CartLine         `json:"cart"`
	Addresses   []accounts.AddressDTO    `json:"addresses"`
	Options     *checkoutoptions.Options `json:"options"`
	ActiveBatch *batches.BatchDTO        `json:"active_batch"`
	Coupons     []coupons.Coupon         `json:"coupons"`
	Blocked     bool                     `json:"blocked"`
	BlockReason string                   `json:"block_reason,omitempty"`
}

// Result describes a completed checkout.
type Result struct {
	Path               string            `json:"path"`
	Order              *orders.OrderDTO  `json:"order,omitempty"`
	Batch              *batches.BatchDTO `json:"batch,omitempty"`
	WooCommerceOrderID int64             `json:"woocommerce_order_id"`
	PaymentIntentID    *string           `json:"payment_intent_id,omitempty"`
	AmountCharged      decimal.Decimal   `json:"amount_charged"`
	Breakdown          pricing.Breakdown `json:"breakdown"`
	NextRoute          string            `json:"next_route"`
}

// prepared is a submission that passed every gate.
type prepared struct {
	userID    uuid.UUID
	attemptID uuid.UUID
	email     string
	request   SubmitRequest
	lines     []types.CartLine
	address   models.Address
	method    woocommerce.ShippingMethod
	gateway   woocommerce.PaymentGateway
	coupon    *models.UserCoupon
	breakdown pricing.Breakdown
}
