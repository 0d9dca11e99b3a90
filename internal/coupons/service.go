package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/internal/pricing"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
)

const maxMintAttempts = 3

// Coupon is the public view of a usable user coupon.
type Coupon struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	Type        enums.CouponType   `json:"type"`
	Value       decimal.Decimal    `json:"value"`
	Description string             `json:"description,omitempty"`
	Source      enums.CouponSource `json:"source"`
	ObtainedAt  time.Time          `json:"obtained_at"`
	ValidUntil  time.Time          `json:"valid_until"`
}

type store interface {
	ListUsable(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.UserCoupon, error)
	FindType(ctx context.Context, id uuid.UUID) (*models.CouponType, error)
	Create(ctx context.Context, coupon *models.UserCoupon) error
}

type Service interface {
	ListUsable(ctx context.Context, userID uuid.UUID) ([]Coupon, error)
	Mint(ctx context.Context, userID, couponTypeID uuid.UUID, source enums.CouponSource) (*models.UserCoupon, error)
}

type service struct {
	repo store
	now  func() time.Time
}

func NewService(repo store, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) ListUsable(ctx context.Context, userID uuid.UUID) ([]Coupon, error) {
	rows, err := s.repo.ListUsable(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons")
	}
	out := make([]Coupon, 0, len(rows))
	for _, row := range rows {
		if row.CouponType == nil {
			continue
		}
		out = append(out, ToDTO(row))
	}
	return out, nil
}

// Mint issues a new coupon of couponTypeID valid for the type's validity_days.
func (s *service) Mint(ctx context.Context, userID, couponTypeID uuid.UUID, source enums.CouponSource) (*models.UserCoupon, error) {
	ct, err := s.repo.FindType(ctx, couponTypeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "coupon type not found")
	}
	if !ct.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon type is inactive")
	}

	now := s.now().UTC()
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		coupon := &models.UserCoupon{
			ID:           uuid.New(),
			UserID:       userID,
			CouponTypeID: ct.ID,
			Code:         NewCode(string(source)),
			Source:       source,
			ObtainedAt:   now,
			ValidUntil:   now.AddDate(0, 0, ct.ValidityDays),
		}
		err := s.repo.Create(ctx, coupon)
		if errors.Is(err, ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create coupon")
		}
		coupon.CouponType = ct
		return coupon, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not issue a unique coupon code")
}

func ToDTO(row models.UserCoupon) Coupon {
	c := Coupon{
		ID:         row.ID,
		Code:       row.Code,
		Source:     row.Source,
		ObtainedAt: row.ObtainedAt,
		ValidUntil: row.ValidUntil,
	}
	if row.CouponType != nil {
		c.Type = row.CouponType.Type
		c.Value = row.CouponType.Value
		if row.CouponType.Description != nil {
			c.Description = *row.CouponType.Description
		}
	}
	return c
}

// ForPricing converts a loaded coupon for the calculator. A nil coupon yields nil.
func ForPricing(row *models.UserCoupon) *pricing.Coupon {
	if row == nil || row.CouponType == nil {
		return nil
	}
	return &pricing.Coupon{Type: row.CouponType.Type, Value: row.CouponType.Value}
}
