package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

// CouponRepository is the persistence surface used by checkout and the wheel.
type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	ListUsable(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.UserCoupon, error)
	FindUsable(ctx context.Context, userID, couponID uuid.UUID, now time.Time) (*models.UserCoupon, error)
	MarkUsed(ctx context.Context, userID, couponID, orderID uuid.UUID, now time.Time) error
	FindType(ctx context.Context, id uuid.UUID) (*models.CouponType, error)
	Create(ctx context.Context, coupon *models.UserCoupon) error
}
