package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/internal/checkoutoptions"
	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/pricing"
	"github.com/angelmondragon/boutique-backend/pkg/db"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

func gateError(reason, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetail("reason", reason)
}

// prepare runs every gate in priority order and returns the loaded selection.
// Nothing is written before it succeeds.
func (s *service) prepare(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*prepared, error) {
	profile, err := s.accounts.FindProfile(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile != nil && profile.IsBlocked {
		details := pkgerrors.Details{"reason": ReasonAccountBlocked}
		if profile.BlockedReason != nil {
			details["blocked_reason"] = *profile.BlockedReason
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked").WithDetails(details)
	}

	lines, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, gateError(ReasonCartEmpty, "cart is empty")
	}

	subtotal := pricing.Subtotal(lines)
	if !pricing.MeetsMinimum(subtotal) {
		return nil, gateError(ReasonMinimumNotMet, "minimum order amount not reached").
			WithDetail("minimum", pricing.MinimumOrder.StringFixed(2)).
			WithDetail("shortfall", pricing.Shortfall(subtotal).StringFixed(2))
	}

	if req.AddressID == nil || *req.AddressID == uuid.Nil {
		return nil, gateError(ReasonAddressRequired, "shipping address is required")
	}
	address, err := s.accounts.FindAddress(ctx, userID, *req.AddressID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, gateError(ReasonAddressRequired, "shipping address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}

	opts, err := s.options.Get(ctx)
	if err != nil {
		return nil, err
	}
	method, err := s.resolveMethod(ctx, opts, req.ShippingMethodID)
	if err != nil {
		return nil, err
	}

	relay := req.RelayPoint
	if method.Kind == enums.ShippingMethodKindRelay {
		if relay == nil || strings.TrimSpace(relay.ID) == "" {
			return nil, gateError(ReasonRelayPointRequired, "a relay point must be selected for this shipping method")
		}
	} else {
		relay = nil
	}
	req.RelayPoint = relay

	gatewayID := strings.TrimSpace(req.PaymentMethodID)
	if gatewayID == "" {
		return nil, gateError(ReasonPaymentMethodRequired, "payment method is required")
	}
	gateway, ok := opts.Gateway(gatewayID)
	if !ok {
		return nil, gateError(ReasonPaymentMethodRequired, "payment method is not available")
	}

	p := &prepared{
		userID:    userID,
		attemptID: uuid.New(),
		request:   req,
		lines:     lines,
		address:   *address,
		method:    method,
		gateway:   gateway,
	}
	if profile != nil && profile.Email != nil {
		p.email = *profile.Email
	}

	// The batch path charges subtotal and shipping only, so coupons and
	// insurance are not applied there.
	if req.UseDeliveryBatch {
		p.request.CouponID = nil
		p.request.Insurance = ""
	} else if req.CouponID != nil {
		coupon, err := s.coupons.FindUsable(ctx, userID, *req.CouponID, s.now().UTC())
		if err != nil {
			if errors.Is(err, coupons.ErrCouponUnavailable) {
				return nil, gateError(ReasonCouponUnavailable, "coupon is used, expired or not yours")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
		}
		p.coupon = coupon
	}

	breakdown, err := pricing.Calculate(pricing.Selection{
		Lines:      lines,
		MethodCost: &method.Cost,
		Coupon:     coupons.ForPricing(p.coupon),
		Insurance:  p.request.Insurance,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid insurance tier").WithDetail("reason", "insurance_invalid")
	}
	p.breakdown = breakdown
	return p, nil
}

// resolveMethod looks the method up in the cached options and refetches once
// on a miss, since the cache can be older than a WooCommerce change.
func (s *service) resolveMethod(ctx context.Context, opts *checkoutoptions.Options, id string) (woocommerce.ShippingMethod, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return woocommerce.ShippingMethod{}, gateError(ReasonShippingMethodRequired, "shipping method is required")
	}
	if method, ok := opts.Method(id); ok {
		return method, nil
	}
	fresh, err := s.options.Refresh(ctx)
	if err != nil {
		return woocommerce.ShippingMethod{}, err
	}
	if method, ok := fresh.Method(id); ok {
		return method, nil
	}
	return woocommerce.ShippingMethod{}, gateError(ReasonShippingMethodRequired, "shipping method is not available")
}
