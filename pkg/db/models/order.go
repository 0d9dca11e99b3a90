package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

// Order is the local order paired 1:1 with a WooCommerce order on the direct path.
type Order struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	OrderNumber        string                `gorm:"column:order_number;not null"`
	Status             enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	Subtotal           decimal.Decimal       `gorm:"column:subtotal;type:numeric(10,2);not null"`
	DiscountAmount     decimal.Decimal       `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	ShippingCost       decimal.Decimal       `gorm:"column:shipping_cost;type:numeric(10,2);not null;default:0"`
	InsuranceCost      decimal.Decimal       `gorm:"column:insurance_cost;type:numeric(10,2);not null;default:0"`
	TaxAmount          decimal.Decimal       `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	TotalAmount        decimal.Decimal       `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ShippingAddress    types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	ShippingMethodID   string                `gorm:"column:shipping_method_id;not null"`
	PaymentMethod      string                `gorm:"column:payment_method;not null"`
	RelayPoint         *types.RelayPoint     `gorm:"column:relay_point;type:jsonb;serializer:json"`
	UserCouponID       *uuid.UUID            `gorm:"column:user_coupon_id;type:uuid"`
	WooCommerceOrderID *int64                `gorm:"column:woocommerce_order_id"`
	Items              []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID   int64           `gorm:"column:product_id;not null"`
	VariationID int64           `gorm:"column:variation_id;not null;default:0"`
	Name        string          `gorm:"column:name;not null"`
	Slug        *string         `gorm:"column:slug"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	ImageURL    *string         `gorm:"column:image_url"`
}
