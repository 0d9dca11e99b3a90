package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem mirrors one server-side cart line. (user_id, product_id, variation_id) is unique.
type CartItem struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	ProductID          int64             `gorm:"column:product_id;not null"`
	VariationID        int64             `gorm:"column:variation_id;not null;default:0"`
	Name               string            `gorm:"column:name;not null"`
	Slug               *string           `gorm:"column:slug"`
	Price              decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	Image              *string           `gorm:"column:image"`
	Quantity           int               `gorm:"column:quantity;not null"`
	VariationPrice     *decimal.Decimal  `gorm:"column:variation_price;type:numeric(10,2)"`
	VariationImage     *string           `gorm:"column:variation_image"`
	SelectedAttributes map[string]string `gorm:"column:selected_attributes;type:jsonb;serializer:json"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
