package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/boutique-backend/internal/accounts"
	"github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/orders"
	"github.com/angelmondragon/boutique-backend/internal/pricing"
	"github.com/angelmondragon/boutique-backend/pkg/config"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/metrics"
	"github.com/angelmondragon/boutique-backend/pkg/redis"
	"github.com/angelmondragon/boutique-backend/pkg/stripe"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"

	userLockScope = "checkout"
)

// Service loads the checkout page, prices selections and places orders.
type Service interface {
	Context(ctx context.Context, userID uuid.UUID) (*Context, error)
	Quote(ctx context.Context, userID uuid.UUID, sel Selection) (*Quote, error)
	Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*Result, error)
}

// Deps are the collaborators of the checkout service. Metrics and Logger are optional.
type Deps struct {
	Cart     cartStore
	Accounts accountReader
	Options  optionsProvider
	Coupons  coupons.CouponRepository
	Orders   orders.OrderRepository
	Batches  batches.BatchRepository
	Tx       txRunner
	Woo      woocommerce.Orders
	Payments stripe.PaymentIntents
	Locks    redis.LockStore
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	cart     cartStore
	accounts accountReader
	options  optionsProvider
	coupons  coupons.CouponRepository
	orders   orders.OrderRepository
	batches  batches.BatchRepository
	tx       txRunner
	woo      woocommerce.Orders
	payments stripe.PaymentIntents
	locks    redis.LockStore
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
	cfg      config.CheckoutConfig
	cards    map[string]struct{}
}

func NewService(deps Deps, cfg config.CheckoutConfig) (Service, error) {
	switch {
	case deps.Cart == nil:
		return nil, fmt.Errorf("cart service required")
	case deps.Accounts == nil:
		return nil, fmt.Errorf("accounts repository required")
	case deps.Options == nil:
		return nil, fmt.Errorf("checkout options required")
	case deps.Coupons == nil:
		return nil, fmt.Errorf("coupon repository required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("order repository required")
	case deps.Batches == nil:
		return nil, fmt.Errorf("batch repository required")
	case deps.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case deps.Woo == nil:
		return nil, fmt.Errorf("woocommerce orders client required")
	case deps.Payments == nil:
		return nil, fmt.Errorf("payment intents client required")
	case deps.Locks == nil:
		return nil, fmt.Errorf("lock store required")
	}
	if cfg.BatchWindow <= 0 {
		return nil, fmt.Errorf("batch window must be positive")
	}
	if cfg.UserLockTTL <= 0 {
		return nil, fmt.Errorf("user lock ttl must be positive")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	cards := make(map[string]struct{}, len(cfg.CardGateways))
	for _, id := range cfg.CardGateways {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			cards[id] = struct{}{}
		}
	}
	return &service{
		cart:     deps.Cart,
		accounts: deps.Accounts,
		options:  deps.Options,
		coupons:  deps.Coupons,
		orders:   deps.Orders,
		batches:  deps.Batches,
		tx:       deps.Tx,
		woo:      deps.Woo,
		payments: deps.Payments,
		locks:    deps.Locks,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
		now:      deps.Now,
		cfg:      cfg,
		cards:    cards,
	}, nil
}

func (s *service) Context(ctx context.Context, userID uuid.UUID) (*Context, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	now := s.now().UTC()
	out := &Context{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.accounts.FindProfile(gctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}
		if profile != nil && profile.IsBlocked {
			out.Blocked = true
			if profile.BlockedReason != nil {
				out.BlockReason = *profile.BlockedReason
			}
		}
		return nil
	})
	g.Go(func() error {
		lines, err := s.cart.Get(gctx, userID)
		if err != nil {
			return err
		}
		out.Cart = lines
		return nil
	})
	g.Go(func() error {
		rows, err := s.accounts.ListAddresses(gctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load addresses")
		}
		out.Addresses = accounts.AddressesFromModels(rows)
		return nil
	})
	g.Go(func() error {
		opts, err := s.options.Get(gctx)
		if err != nil {
			return err
		}
		out.Options = opts
		return nil
	})
	g.Go(func() error {
		batch, err := s.batches.FindActive(gctx, userID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active batch")
		}
		out.ActiveBatch = batches.FromModel(batch)
		return nil
	})
	g.Go(func() error {
		rows, err := s.coupons.ListUsable(gctx, userID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupons")
		}
		out.Coupons = make([]coupons.Coupon, 0, len(rows))
		for _, row := range rows {
			out.Coupons = append(out.Coupons, coupons.ToDTO(row))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Quote prices a partial selection. Missing choices are priced as absent and
// never rejected, so the page can show a running total.
func (s *service) Quote(ctx context.Context, userID uuid.UUID, sel Selection) (*Quote, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	lines, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	quote := &Quote{Lines: lines}

	pricingSel := pricing.Selection{Lines: lines}
	if !sel.UseDeliveryBatch {
		pricingSel.Insurance = sel.Insurance
	}
	if id := strings.TrimSpace(sel.ShippingMethodID); id != "" {
		opts, err := s.options.Get(ctx)
		if err != nil {
			return nil, err
		}
		method, err := s.resolveMethod(ctx, opts, id)
		if err != nil {
			return nil, err
		}
		quote.ShippingMethod = &method
		pricingSel.MethodCost = &method.Cost
	}
	if sel.CouponID != nil && !sel.UseDeliveryBatch {
		row, err := s.coupons.FindUsable(ctx, userID, *sel.CouponID, now)
		if err != nil {
			if errors.Is(err, coupons.ErrCouponUnavailable) {
				return nil, gateError(ReasonCouponUnavailable, "coupon is used, expired or not yours")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
		}
		dto := coupons.ToDTO(*row)
		quote.Coupon = &dto
		pricingSel.Coupon = coupons.ForPricing(row)
	}

	breakdown, err := pricing.Calculate(pricingSel)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid insurance tier").WithDetail("reason", "insurance_invalid")
	}
	quote.Breakdown = breakdown

	batch, err := s.batches.FindActive(ctx, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active batch")
	}
	quote.ActiveBatch = batches.FromModel(batch)
	if sel.UseDeliveryBatch {
		appending := batch != nil
		shipping := pricing.ShippingCost(pricingSel.MethodCost, nil)
		quote.BatchPayment = &BatchPayment{
			Appending: appending,
			Shipping:  shipping,
			Amount:    pricing.BatchPaymentAmount(breakdown.Subtotal, shipping, appending),
		}
	}
	return quote, nil
}

// Submit places the order under a per-user lock so two submissions of the
// same user never race on the active batch or a coupon.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	start := time.Now()
	ctx = s.logg.WithUserID(ctx, userID.String())

	path := PathDirect
	if req.UseDeliveryBatch {
		path = PathBatchCreate
	}
	result, err := s.submitLocked(ctx, userID, req)
	if result != nil {
		path = result.Path
	} else if typed := pkgerrors.As(err); typed != nil {
		if p, ok := typed.Details()["path"].(string); ok {
			path = p
		}
	}
	s.metrics.ObserveOutcome(path, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "path", result.Path), "checkout completed")
	return result, nil
}

func (s *service) submitLocked(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*Result, error) {
	lock, err := redis.NewLock(s.locks, s.locks.LockKey(userLockScope, userID.String()), s.cfg.UserLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build checkout lock")
	}
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a checkout is already in progress").
			WithDetail("reason", ReasonCheckoutInProgress)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release checkout lock failed")
		}
	}()

	p, err := s.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	var result *Result
	if p.request.UseDeliveryBatch {
		result, err = s.submitBatch(ctx, p)
	} else {
		result, err = s.submitDirect(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	// The order exists upstream at this point, a stale cart is only cosmetic.
	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logg.Error(ctx, "clear cart after checkout", err)
	}
	return result, nil
}

func (s *service) isCardGateway(id string) bool {
	_, ok := s.cards[strings.ToLower(id)]
	return ok
}

// idempotencyKey derives a Stripe idempotency key scoped to one submission
// attempt. Transport retries inside the attempt share it; a new attempt under
// the same client key gets a fresh intent because the previous one may have
// been cancelled by compensation.
func idempotencyKey(p *prepared, suffix string) string {
	key := strings.TrimSpace(p.request.IdempotencyKey)
	if key == "" {
		return ""
	}
	return "checkout:" + p.userID.String() + ":" + key + ":" + p.attemptID.String() + ":" + suffix
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation),
		pkgerrors.IsCode(err, pkgerrors.CodeForbidden),
		pkgerrors.IsCode(err, pkgerrors.CodeConflict),
		pkgerrors.IsCode(err, pkgerrors.CodeStateConflict),
		pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized):
		return outcomeRejected
	default:
		return outcomeFailed
	}
}

func batchItems(batchID uuid.UUID, p *prepared, wooOrderID int64, intentID *string) []models.DeliveryBatchItem {
	items := make([]models.DeliveryBatchItem, 0, len(p.lines))
	for _, line := range p.lines {
		woo := wooOrderID
		items = append(items, models.DeliveryBatchItem{
			ID:                 uuid.New(),
			BatchID:            batchID,
			ProductID:          line.ProductID,
			VariationID:        line.VariationID,
			Name:               line.Name,
			Slug:               optionalString(line.Slug),
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice(),
			TotalPrice:         line.LineTotal(),
			ImageURL:           optionalString(line.ImageURL()),
			WooCommerceOrderID: &woo,
			PaymentIntentID:    intentID,
		})
	}
	return items
}

func orderItems(orderID uuid.UUID, p *prepared) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(p.lines))
	for _, line := range p.lines {
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Name:        line.Name,
			Slug:        optionalString(line.Slug),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice(),
			TotalPrice:  line.LineTotal(),
			ImageURL:    optionalString(line.ImageURL()),
		})
	}
	return items
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
