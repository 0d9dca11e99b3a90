package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

// OrderDTO is the public view of a local order.
type OrderDTO struct {
	ID                 uuid.UUID             `json:"id"`
	OrderNumber        string                `json:"order_number"`
	Status             enums.OrderStatus     `json:"status"`
	Subtotal           decimal.Decimal       `json:"subtotal"`
	DiscountAmount     decimal.Decimal       `json:"discount_amount"`
	ShippingCost       decimal.Decimal       `json:"shipping_cost"`
	InsuranceCost      decimal.Decimal       `json:"insurance_cost"`
	TaxAmount          decimal.Decimal       `json:"tax_amount"`
	TotalAmount        decimal.Decimal       `json:"total_amount"`
	ShippingAddress    types.ShippingAddress `json:"shipping_address"`
	ShippingMethodID   string                `json:"shipping_method_id"`
	PaymentMethod      string                `json:"payment_method"`
	RelayPoint         *types.RelayPoint     `json:"relay_point,omitempty"`
	WooCommerceOrderID *int64                `json:"woocommerce_order_id,omitempty"`
	Items              []OrderItemDTO        `json:"items"`
	CreatedAt          time.Time             `json:"created_at"`
}

type OrderItemDTO struct {
	ProductID   int64           `json:"product_id"`
	VariationID int64           `json:"variation_id,omitempty"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		Status:             order.Status,
		Subtotal:           order.Subtotal,
		DiscountAmount:     order.DiscountAmount,
		ShippingCost:       order.ShippingCost,
		InsuranceCost:      order.InsuranceCost,
		TaxAmount:          order.TaxAmount,
		TotalAmount:        order.TotalAmount,
		ShippingAddress:    order.ShippingAddress,
		ShippingMethodID:   order.ShippingMethodID,
		PaymentMethod:      order.PaymentMethod,
		RelayPoint:         order.RelayPoint,
		WooCommerceOrderID: order.WooCommerceOrderID,
		Items:              make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:          order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			ImageURL:    item.ImageURL,
		})
	}
	return dto
}
