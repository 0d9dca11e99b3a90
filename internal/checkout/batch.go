package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/internal/pricing"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/stripe"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

// submitBatch opens a delivery batch or appends to the active one. Opening
// charges subtotal and shipping, appending charges the subtotal only.
func (s *service) submitBatch(ctx context.Context, p *prepared) (*Result, error) {
	now := s.now().UTC()
	userID := p.userID

	// Expired batches must be validated first, or the unique pending index
	// would reject the new one.
	if _, err := s.batches.CloseExpired(ctx, &userID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close expired batches")
	}
	active, err := s.batches.FindActive(ctx, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active batch")
	}

	appending := active != nil
	path := PathBatchCreate
	if appending {
		path = PathBatchAppend
	}
	ctx = s.logg.WithField(ctx, "path", path)

	shipping := pricing.ShippingCost(&p.method.Cost, nil)
	amount := pricing.BatchPaymentAmount(p.breakdown.Subtotal, shipping, appending)

	batch := active
	if !appending {
		batch = &models.DeliveryBatch{
			ID:                uuid.New(),
			UserID:            userID,
			Status:            enums.DeliveryBatchStatusPending,
			ShippingCost:      shipping,
			ShippingAddressID: p.address.ID,
			ShippingMethodID:  p.method.ID,
			RelayPoint:        p.request.RelayPoint,
			PaymentMethod:     p.gateway.ID,
			ValidateAt:        now.Add(s.cfg.BatchWindow),
		}
	}

	var (
		intentID *string
		wooOrder *woocommerce.Order
	)
	sg := newSaga(path, s.logg, s.metrics, s.cfg.CompensationBudget)

	if s.isCardGateway(p.gateway.ID) {
		sg.add(sagaStep{
			Name: "payment_intent",
			Run: func(ctx context.Context) error {
				id, err := s.payments.Create(ctx, stripe.PaymentIntentRequest{
					AmountMinor:    pricing.MinorUnits(amount),
					Description:    fmt.Sprintf("Delivery batch %s", batch.ID),
					IdempotencyKey: idempotencyKey(p, "intent"),
					Metadata: map[string]string{
						"user_id":           userID.String(),
						"delivery_batch_id": batch.ID.String(),
						"checkout_path":     path,
					},
				})
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
				}
				intentID = &id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.payments.Cancel(ctx, *intentID)
			},
		})
	}

	if !appending {
		sg.add(sagaStep{
			Name: "create_batch",
			Run: func(ctx context.Context) error {
				err := s.batches.Create(ctx, batch)
				if errors.Is(err, batches.ErrPendingBatchExists) {
					return pkgerrors.New(pkgerrors.CodeConflict, "a pending delivery batch already exists").
						WithDetail("reason", "batch_conflict")
				}
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.batches.Cancel(ctx, batch.ID)
			},
		})
	}

	sg.add(sagaStep{
		Name: "woocommerce_order",
		Run: func(ctx context.Context) error {
			in := wooOrderInput{
				paymentMethod:      p.gateway.ID,
				paymentMethodTitle: p.gateway.Title,
				shippingTitle:      p.method.Title,
				shippingTotal:      shipping,
				meta:               []woocommerce.MetaData{idMeta(metaDeliveryBatchID, batch.ID)},
			}
			if appending {
				in.shippingTitle = alreadyPaidShippingTitle
				in.shippingTotal = decimal.Zero
			}
			if intentID != nil {
				in.meta = append(in.meta, woocommerce.MetaData{Key: metaPaymentIntentID, Value: *intentID})
			}
			order, err := s.woo.CreateOrder(ctx, buildWooOrder(p, in))
			if err != nil {
				return err
			}
			wooOrder = order
			return nil
		},
		Compensate: func(ctx context.Context) error {
			return s.woo.UpdateOrderStatus(ctx, *wooOrder.ID, woocommerce.OrderStatusCancelled)
		},
	})

	sg.add(sagaStep{
		Name: "record_batch_items",
		Run: func(ctx context.Context) error {
			items := batchItems(batch.ID, p, *wooOrder.ID, intentID)
			return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				repo := s.batches.WithTx(tx)
				if !appending {
					if err := repo.SetWooCommerceOrder(ctx, batch.ID, *wooOrder.ID); err != nil {
						return err
					}
				}
				return repo.InsertItems(ctx, items)
			})
		},
	})

	if err := sg.run(ctx); err != nil {
		return nil, withPath(err, path)
	}

	if !appending {
		wooID := *wooOrder.ID
		batch.WooCommerceOrderID = &wooID
	}
	if fresh, err := s.batches.FindActive(ctx, userID, now); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reload batch after checkout failed")
		batch.Items = append(batch.Items, batchItems(batch.ID, p, *wooOrder.ID, intentID)...)
	} else if fresh != nil {
		batch = fresh
	}

	breakdown := p.breakdown
	breakdown.Shipping = amount.Sub(breakdown.Subtotal)
	breakdown.Total = amount
	breakdown.Tax = pricing.Tax(amount).Round(2)

	return &Result{
		Path:               path,
		Batch:              batches.FromModel(batch),
		WooCommerceOrderID: *wooOrder.ID,
		PaymentIntentID:    intentID,
		AmountCharged:      amount,
		Breakdown:          breakdown,
		NextRoute:          pendingDeliveriesRoute,
	}, nil
}

func withPath(err error, path string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.WithDetail("path", path)
	}
	return err
}
