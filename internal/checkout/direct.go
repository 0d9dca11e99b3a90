package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/orders"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

const maxOrderNumberAttempts = 3

// submitDirect places one local order paired with one WooCommerce order. The
// coupon is consumed in the same transaction that moves the order to processing.
func (s *service) submitDirect(ctx context.Context, p *prepared) (*Result, error) {
	now := s.now().UTC()
	ctx = s.logg.WithField(ctx, "path", PathDirect)

	if p.gateway.ID != directPaymentMethod {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"recordedGateway": directPaymentMethod,
			"selectedGateway": p.gateway.ID,
		}), "direct checkout ignores the selected gateway")
	}

	orderID := uuid.New()
	order := &models.Order{
		ID:               orderID,
		UserID:           p.userID,
		Status:           enums.OrderStatusPending,
		Subtotal:         p.breakdown.Subtotal,
		DiscountAmount:   p.breakdown.Discount,
		ShippingCost:     p.breakdown.Shipping,
		InsuranceCost:    p.breakdown.Insurance,
		TaxAmount:        p.breakdown.Tax,
		TotalAmount:      p.breakdown.Total,
		ShippingAddress:  p.address.Snapshot(),
		ShippingMethodID: p.method.ID,
		PaymentMethod:    directPaymentMethod,
		RelayPoint:       p.request.RelayPoint,
		Items:            orderItems(orderID, p),
	}
	if p.coupon != nil {
		couponID := p.coupon.ID
		order.UserCouponID = &couponID
	}

	var wooOrder *woocommerce.Order
	sg := newSaga(PathDirect, s.logg, s.metrics, s.cfg.CompensationBudget)

	sg.add(sagaStep{
		Name: "insert_order",
		Run: func(ctx context.Context) error {
			return s.insertOrder(ctx, order, now)
		},
		Compensate: func(ctx context.Context) error {
			return s.orders.MarkFailed(ctx, order.ID)
		},
	})

	sg.add(sagaStep{
		Name: "woocommerce_order",
		Run: func(ctx context.Context) error {
			in := wooOrderInput{
				paymentMethod:      directPaymentMethod,
				paymentMethodTitle: directPaymentMethodTitle,
				shippingTitle:      p.method.Title,
				shippingTotal:      p.breakdown.Shipping,
				fees:               directFees(p),
				meta:               []woocommerce.MetaData{idMeta(metaLocalOrderID, order.ID)},
			}
			created, err := s.woo.CreateOrder(ctx, buildWooOrder(p, in))
			if err != nil {
				return err
			}
			wooOrder = created
			return nil
		},
		Compensate: func(ctx context.Context) error {
			return s.woo.UpdateOrderStatus(ctx, *wooOrder.ID, woocommerce.OrderStatusCancelled)
		},
	})

	sg.add(sagaStep{
		Name: "finalise_order",
		Run: func(ctx context.Context) error {
			return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				if p.coupon != nil {
					err := s.coupons.WithTx(tx).MarkUsed(ctx, p.userID, p.coupon.ID, order.ID, now)
					if errors.Is(err, coupons.ErrCouponUnavailable) {
						return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon was used by another order").
							WithDetail("reason", ReasonCouponUnavailable)
					}
					if err != nil {
						return err
					}
				}
				return s.orders.WithTx(tx).MarkProcessing(ctx, order.ID, *wooOrder.ID)
			})
		},
	})

	if err := sg.run(ctx); err != nil {
		return nil, withPath(err, PathDirect)
	}

	wooID := *wooOrder.ID
	order.Status = enums.OrderStatusProcessing
	order.WooCommerceOrderID = &wooID

	return &Result{
		Path:               PathDirect,
		Order:              orders.FromModel(order),
		WooCommerceOrderID: wooID,
		AmountCharged:      p.breakdown.Total,
		Breakdown:          p.breakdown,
		NextRoute:          confirmationRoutePrefix + order.OrderNumber,
	}, nil
}

// insertOrder draws a fresh order number on each attempt. A collision rolls
// the transaction back, so retrying with the same ids is safe.
func (s *service) insertOrder(ctx context.Context, order *models.Order, now time.Time) error {
	var err error
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = orders.NewOrderNumber(now)
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.orders.WithTx(tx).Create(ctx, order)
		})
		if !errors.Is(err, orders.ErrDuplicateOrderNumber) {
			return err
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate an order number")
}
