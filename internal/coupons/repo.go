package coupons

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

const codeConstraint = "uniq_user_coupons_code"

var (
	// ErrCouponUnavailable is returned when a coupon is missing, used or expired.
	ErrCouponUnavailable = errors.New("coupon unavailable")
	ErrDuplicateCode     = errors.New("coupon code already issued")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListUsable returns unused, unexpired coupons of the user, soonest expiry first.
func (r *Repository) ListUsable(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.UserCoupon, error) {
	var rows []models.UserCoupon
	err := r.db.WithContext(ctx).
		Preload("CouponType").
		Where("user_id = ? AND is_used = ? AND valid_until > ?", userID, false, now).
		Order("valid_until ASC").
		Find(&rows).Error
	return rows, err
}

// FindUsable loads one coupon of the user, returning ErrCouponUnavailable when
// it does not exist, is used or has expired.
func (r *Repository) FindUsable(ctx context.Context, userID, couponID uuid.UUID, now time.Time) (*models.UserCoupon, error) {
	var row models.UserCoupon
	err := r.db.WithContext(ctx).
		Preload("CouponType").
		Where("id = ? AND user_id = ?", couponID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !row.Usable(now) || row.CouponType == nil {
		return nil, ErrCouponUnavailable
	}
	return &row, nil
}

// MarkUsed moves the coupon from unused to used exactly once and links it to orderID.
func (r *Repository) MarkUsed(ctx context.Context, userID, couponID, orderID uuid.UUID, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.UserCoupon{}).
		Where("id = ? AND user_id = ? AND is_used = ?", couponID, userID, false).
		Updates(map[string]any{
			"is_used":  true,
			"used_at":  now,
			"order_id": orderID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponUnavailable
	}
	return nil
}

func (r *Repository) FindType(ctx context.Context, id uuid.UUID) (*models.CouponType, error) {
	var ct models.CouponType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ct).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *Repository) Create(ctx context.Context, coupon *models.UserCoupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Omit("CouponType").Create(coupon).Error
	if db.IsUniqueViolation(err, codeConstraint) || db.IsUniqueViolation(err, "user_coupons.code") {
		return ErrDuplicateCode
	}
	return err
}
