package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/enums"
)

// CouponType is a reusable discount template.
type CouponType struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type         enums.CouponType `gorm:"column:type;type:text;not null"`
	Value        decimal.Decimal  `gorm:"column:value;type:numeric(10,2);not null;default:0"`
	Description  *string          `gorm:"column:description"`
	ValidityDays int              `gorm:"column:validity_days;not null;default:30"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// UserCoupon is a coupon instance owned by one user. IsUsed only ever moves false to true.
type UserCoupon struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	CouponTypeID uuid.UUID          `gorm:"column:coupon_type_id;type:uuid;not null"`
	Code         string             `gorm:"column:code;not null"`
	Source       enums.CouponSource `gorm:"column:source;type:text;not null;default:'manual'"`
	IsUsed       bool               `gorm:"column:is_used;not null;default:false"`
	UsedAt       *time.Time         `gorm:"column:used_at"`
	OrderID      *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	ObtainedAt   time.Time          `gorm:"column:obtained_at;not null"`
	ValidUntil   time.Time          `gorm:"column:valid_until;not null"`
	CouponType   *CouponType        `gorm:"foreignKey:CouponTypeID"`
}

// Usable reports whether the coupon can still be applied at now.
func (c UserCoupon) Usable(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ValidUntil)
}
