package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

// DeliveryBatch groups several orders of one user under a single shipping charge.
type DeliveryBatch struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID                 `gorm:"column:user_id;type:uuid;not null"`
	Status             enums.DeliveryBatchStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ShippingCost       decimal.Decimal           `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	ShippingAddressID  uuid.UUID                 `gorm:"column:shipping_address_id;type:uuid;not null"`
	ShippingMethodID   string                    `gorm:"column:shipping_method_id;not null"`
	RelayPoint         *types.RelayPoint         `gorm:"column:relay_point;type:jsonb;serializer:json"`
	PaymentMethod      string                    `gorm:"column:payment_method;not null"`
	WooCommerceOrderID *int64                    `gorm:"column:woocommerce_order_id"`
	ValidateAt         time.Time                 `gorm:"column:validate_at;not null"`
	Items              []DeliveryBatchItem       `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the batch still accepts appended orders at now.
func (b DeliveryBatch) IsActive(now time.Time) bool {
	return b.Status == enums.DeliveryBatchStatusPending && b.ValidateAt.After(now)
}

type DeliveryBatchItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchID            uuid.UUID       `gorm:"column:batch_id;type:uuid;not null"`
	ProductID          int64           `gorm:"column:product_id;not null"`
	VariationID        int64           `gorm:"column:variation_id;not null;default:0"`
	Name               string          `gorm:"column:name;not null"`
	Slug               *string         `gorm:"column:slug"`
	Quantity           int             `gorm:"column:quantity;not null"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice         decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	ImageURL           *string         `gorm:"column:image_url"`
	WooCommerceOrderID *int64          `gorm:"column:woocommerce_order_id"`
	PaymentIntentID    *string         `gorm:"column:payment_intent_id"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}
