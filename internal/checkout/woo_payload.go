package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

const (
	metaLocalOrderID    = "_local_order_id"
	metaDeliveryBatchID = "_delivery_batch_id"
	metaPaymentIntentID = "_stripe_payment_intent_id"
	metaRelayPointID    = "_mondial_relay_point_id"
	metaRelayPointName  = "_mondial_relay_point_name"
	metaRelayPointAddr  = "_mondial_relay_point_address"
)

// wooOrderInput is what differs between the batch and direct payloads.
type wooOrderInput struct {
	paymentMethod      string
	paymentMethodTitle string
	shippingTitle      string
	shippingTotal      decimal.Decimal
	fees               []woocommerce.FeeLine
	meta               []woocommerce.MetaData
}

func buildWooOrder(p *prepared, in wooOrderInput) woocommerce.OrderRequest {
	addr := wooAddress(p.address.Snapshot(), p.email)

	items := make([]woocommerce.LineItem, 0, len(p.lines))
	for _, line := range p.lines {
		items = append(items, woocommerce.LineItem{
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
		})
	}

	meta := append([]woocommerce.MetaData(nil), in.meta...)
	meta = append(meta, relayMeta(p.request.RelayPoint)...)

	return woocommerce.OrderRequest{
		PaymentMethod:      in.paymentMethod,
		PaymentMethodTitle: in.paymentMethodTitle,
		Status:             woocommerce.OrderStatusPending,
		CustomerNote:       strings.TrimSpace(p.request.CustomerNote),
		Billing:            addr,
		Shipping:           addr,
		LineItems:          items,
		ShippingLines: []woocommerce.ShippingLine{{
			MethodID:    p.method.MethodID,
			MethodTitle: in.shippingTitle,
			Total:       wooAmount(in.shippingTotal),
		}},
		FeeLines: in.fees,
		MetaData: meta,
	}
}

// directFees carries insurance and item discounts as fee lines. A
// free_delivery discount is already applied through the shipping total.
func directFees(p *prepared) []woocommerce.FeeLine {
	var fees []woocommerce.FeeLine
	if p.breakdown.Insurance.IsPositive() {
		fees = append(fees, woocommerce.FeeLine{
			Name:      "Assurance colis " + string(p.request.Insurance),
			Total:     wooAmount(p.breakdown.Insurance),
			TaxStatus: "none",
		})
	}
	if p.coupon != nil && p.breakdown.Discount.IsPositive() && !freeDelivery(p) {
		fees = append(fees, woocommerce.FeeLine{
			Name:      "Coupon " + p.coupon.Code,
			Total:     wooAmount(p.breakdown.Discount.Neg()),
			TaxStatus: "none",
		})
	}
	return fees
}

func freeDelivery(p *prepared) bool {
	return p.coupon != nil && p.coupon.CouponType != nil && p.coupon.CouponType.Type == enums.CouponTypeFreeDelivery
}

func wooAddress(a types.ShippingAddress, email string) woocommerce.Address {
	return woocommerce.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.AddressLine1,
		Address2:  a.AddressLine2,
		City:      a.City,
		Postcode:  a.PostalCode,
		Country:   a.Country,
		Email:     email,
		Phone:     a.Phone,
	}
}

func relayMeta(relay *types.RelayPoint) []woocommerce.MetaData {
	if relay == nil {
		return nil
	}
	location := strings.TrimSpace(strings.Join([]string{relay.Address, relay.PostalCode, relay.City}, " "))
	return []woocommerce.MetaData{
		{Key: metaRelayPointID, Value: relay.ID},
		{Key: metaRelayPointName, Value: relay.Name},
		{Key: metaRelayPointAddr, Value: location},
	}
}

func idMeta(key string, id uuid.UUID) woocommerce.MetaData {
	return woocommerce.MetaData{Key: key, Value: id.String()}
}

func wooAmount(v decimal.Decimal) string {
	if v.IsZero() {
		return "0"
	}
	return v.StringFixed(2)
}
