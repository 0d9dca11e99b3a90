package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/internal/checkoutoptions"
	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/orders"
	"github.com/angelmondragon/boutique-backend/pkg/config"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/stripe"
	"github.com/angelmondragon/boutique-backend/pkg/types"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

var (
	testUserID    = uuid.MustParse("6f1c2d9e-7f51-4d8a-9c35-2a0b7e1f4c11")
	testAddressID = uuid.MustParse("0d3a5b8c-1e2f-4a6b-8c9d-0e1f2a3b4c5d")
	testCouponID  = uuid.MustParse("9b8a7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d")
	testNow       = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type stubCart struct {
	lines   []types.CartLine
	cleared int
}

func (s *stubCart) Get(context.Context, uuid.UUID) ([]types.CartLine, error) { return s.lines, nil }

func (s *stubCart) Clear(context.Context, uuid.UUID) error {
	s.cleared++
	return nil
}

type stubAccounts struct {
	profile  *models.Profile
	address  *models.Address
	profiles int
}

func (s *stubAccounts) FindProfile(context.Context, uuid.UUID) (*models.Profile, error) {
	s.profiles++
	return s.profile, nil
}

func (s *stubAccounts) ListAddresses(context.Context, uuid.UUID) ([]models.Address, error) {
	if s.address == nil {
		return nil, nil
	}
	return []models.Address{*s.address}, nil
}

func (s *stubAccounts) FindAddress(_ context.Context, _ uuid.UUID, addressID uuid.UUID) (*models.Address, error) {
	if s.address == nil || s.address.ID != addressID {
		return nil, gorm.ErrRecordNotFound
	}
	addr := *s.address
	return &addr, nil
}

type stubOptions struct {
	opts      *checkoutoptions.Options
	fresh     *checkoutoptions.Options
	refreshes int
}

func (s *stubOptions) Get(context.Context) (*checkoutoptions.Options, error) { return s.opts, nil }

func (s *stubOptions) Refresh(context.Context) (*checkoutoptions.Options, error) {
	s.refreshes++
	if s.fresh != nil {
		return s.fresh, nil
	}
	return s.opts, nil
}

type stubCoupons struct {
	rec     *recorder
	coupon  *models.UserCoupon
	markErr error
	marked  []uuid.UUID
}

func (s *stubCoupons) WithTx(*gorm.DB) coupons.CouponRepository { return s }

func (s *stubCoupons) ListUsable(context.Context, uuid.UUID, time.Time) ([]models.UserCoupon, error) {
	if s.coupon == nil {
		return nil, nil
	}
	return []models.UserCoupon{*s.coupon}, nil
}

func (s *stubCoupons) FindUsable(_ context.Context, _ uuid.UUID, couponID uuid.UUID, now time.Time) (*models.UserCoupon, error) {
	if s.coupon == nil || s.coupon.ID != couponID || !s.coupon.Usable(now) {
		return nil, coupons.ErrCouponUnavailable
	}
	c := *s.coupon
	return &c, nil
}

func (s *stubCoupons) MarkUsed(_ context.Context, _ uuid.UUID, couponID, _ uuid.UUID, _ time.Time) error {
	s.rec.add("coupon.mark_used")
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, couponID)
	return nil
}

func (s *stubCoupons) FindType(context.Context, uuid.UUID) (*models.CouponType, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCoupons) Create(context.Context, *models.UserCoupon) error { return nil }

type stubOrders struct {
	rec        *recorder
	createErrs []error
	created    []models.Order
	numbers    []string
	failed     []uuid.UUID
	processing map[uuid.UUID]int64
}

func (s *stubOrders) WithTx(*gorm.DB) orders.OrderRepository { return s }

func (s *stubOrders) Create(_ context.Context, order *models.Order) error {
	s.numbers = append(s.numbers, order.OrderNumber)
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	s.rec.add("order.create")
	s.created = append(s.created, *order)
	return nil
}

func (s *stubOrders) MarkFailed(_ context.Context, id uuid.UUID) error {
	s.rec.add("order.mark_failed")
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubOrders) MarkProcessing(_ context.Context, id uuid.UUID, wooOrderID int64) error {
	s.rec.add("order.mark_processing")
	if s.processing == nil {
		s.processing = map[uuid.UUID]int64{}
	}
	s.processing[id] = wooOrderID
	return nil
}

func (s *stubOrders) FindByNumber(context.Context, uuid.UUID, string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubBatches struct {
	rec       *recorder
	active    *models.DeliveryBatch
	createErr error
	created   *models.DeliveryBatch
	closed    int
	cancelled []uuid.UUID
	wooSet    map[uuid.UUID]int64
	items     []models.DeliveryBatchItem
}

func (s *stubBatches) WithTx(*gorm.DB) batches.BatchRepository { return s }

func (s *stubBatches) FindActive(context.Context, uuid.UUID, time.Time) (*models.DeliveryBatch, error) {
	if s.active == nil {
		return nil, nil
	}
	b := *s.active
	return &b, nil
}

func (s *stubBatches) CloseExpired(context.Context, *uuid.UUID, time.Time) (int64, error) {
	s.closed++
	return 0, nil
}

func (s *stubBatches) Create(_ context.Context, batch *models.DeliveryBatch) error {
	s.rec.add("batch.create")
	if s.createErr != nil {
		return s.createErr
	}
	b := *batch
	s.created = &b
	s.active = &b
	return nil
}

func (s *stubBatches) SetWooCommerceOrder(_ context.Context, batchID uuid.UUID, wooOrderID int64) error {
	s.rec.add("batch.set_woocommerce_order")
	if s.wooSet == nil {
		s.wooSet = map[uuid.UUID]int64{}
	}
	s.wooSet[batchID] = wooOrderID
	return nil
}

func (s *stubBatches) Cancel(_ context.Context, batchID uuid.UUID) error {
	s.rec.add("batch.cancel")
	s.cancelled = append(s.cancelled, batchID)
	if s.active != nil && s.active.ID == batchID {
		s.active = nil
	}
	return nil
}

func (s *stubBatches) InsertItems(_ context.Context, items []models.DeliveryBatchItem) error {
	s.rec.add("batch.insert_items")
	s.items = append(s.items, items...)
	if s.active != nil {
		s.active.Items = append(s.active.Items, items...)
	}
	return nil
}

type stubTx struct{ calls int }

func (s *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubWoo struct {
	rec       *recorder
	nextID    int64
	err       error
	requests  []woocommerce.OrderRequest
	cancelled []int64
}

func (s *stubWoo) CreateOrder(_ context.Context, req woocommerce.OrderRequest) (*woocommerce.Order, error) {
	s.rec.add("woo.create")
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	id := s.nextID
	return &woocommerce.Order{ID: &id, Status: woocommerce.OrderStatusPending}, nil
}

func (s *stubWoo) UpdateOrderStatus(_ context.Context, id int64, status string) error {
	s.rec.add("woo." + status)
	s.cancelled = append(s.cancelled, id)
	return nil
}

type stubPayments struct {
	rec       *recorder
	id        string
	err       error
	requests  []stripe.PaymentIntentRequest
	cancelled []string
}

func (s *stubPayments) Create(_ context.Context, req stripe.PaymentIntentRequest) (string, error) {
	s.rec.add("intent.create")
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

func (s *stubPayments) Cancel(_ context.Context, id string) error {
	s.rec.add("intent.cancel")
	s.cancelled = append(s.cancelled, id)
	return nil
}

type stubLocks struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *stubLocks) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *stubLocks) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (s *stubLocks) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *stubLocks) LockKey(scope, id string) string { return "test:lock:" + scope + ":" + id }

// fixture wires a service whose cart already passes every gate.
type fixture struct {
	rec      *recorder
	cart     *stubCart
	accounts *stubAccounts
	options  *stubOptions
	coupons  *stubCoupons
	orders   *stubOrders
	batches  *stubBatches
	tx       *stubTx
	woo      *stubWoo
	payments *stubPayments
	locks    *stubLocks
}

func homeMethod() woocommerce.ShippingMethod {
	return woocommerce.ShippingMethod{ID: "1:3", ZoneID: 1, InstanceID: 3, MethodID: "flat_rate", Title: "Colissimo", Cost: dec("4.90"), Kind: enums.ShippingMethodKindHome}
}

func relayMethod() woocommerce.ShippingMethod {
	return woocommerce.ShippingMethod{ID: "1:4", ZoneID: 1, InstanceID: 4, MethodID: "mondial_relay", Title: "Point Relais", Cost: dec("3.50"), Kind: enums.ShippingMethodKindRelay}
}

func newFixture() *fixture {
	rec := &recorder{}
	email := "jeanne@example.com"
	return &fixture{
		rec: rec,
		cart: &stubCart{lines: []types.CartLine{
			{ProductID: 11, Name: "Bougie ambrée", Slug: "bougie-ambree", Price: dec("15.00"), Quantity: 2, Image: "bougie.jpg"},
		}},
		accounts: &stubAccounts{
			profile: &models.Profile{ID: testUserID, Email: &email},
			address: &models.Address{ID: testAddressID, UserID: testUserID, FirstName: "Jeanne", LastName: "Martin", AddressLine1: "3 rue des Lilas", City: "Lyon", PostalCode: "69003", Country: "FR"},
		},
		options: &stubOptions{opts: &checkoutoptions.Options{
			ShippingMethods: []woocommerce.ShippingMethod{homeMethod(), relayMethod()},
			PaymentGateways: []woocommerce.PaymentGateway{
				{ID: "bacs", Title: "Virement bancaire"},
				{ID: "stripe", Title: "Carte bancaire"},
			},
		}},
		coupons:  &stubCoupons{rec: rec},
		orders:   &stubOrders{rec: rec},
		batches:  &stubBatches{rec: rec},
		tx:       &stubTx{},
		woo:      &stubWoo{rec: rec, nextID: 5012},
		payments: &stubPayments{rec: rec, id: "pi_123"},
		locks:    &stubLocks{},
	}
}

func (f *fixture) service(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(Deps{
		Cart:     f.cart,
		Accounts: f.accounts,
		Options:  f.options,
		Coupons:  f.coupons,
		Orders:   f.orders,
		Batches:  f.batches,
		Tx:       f.tx,
		Woo:      f.woo,
		Payments: f.payments,
		Locks:    f.locks,
		Now:      func() time.Time { return testNow },
	}, config.CheckoutConfig{
		BatchWindow:        7 * 24 * time.Hour,
		CardGateways:       []string{"stripe"},
		UserLockTTL:        time.Minute,
		CompensationBudget: time.Second,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func (f *fixture) withCoupon(kind enums.CouponType, value string) {
	f.coupons.coupon = &models.UserCoupon{
		ID:           testCouponID,
		UserID:       testUserID,
		Code:         "ROUE-ABCDEFGHIJ",
		Source:       enums.CouponSourceWheel,
		ObtainedAt:   testNow.Add(-24 * time.Hour),
		ValidUntil:   testNow.Add(24 * time.Hour),
		CouponType:   &models.CouponType{Type: kind, Value: dec(value), IsActive: true},
		CouponTypeID: uuid.New(),
	}
}

func directRequest() SubmitRequest {
	addressID := testAddressID
	return SubmitRequest{Selection: Selection{
		AddressID:        &addressID,
		ShippingMethodID: "1:3",
		PaymentMethodID:  "bacs",
	}}
}

func batchRequest(gateway string) SubmitRequest {
	req := directRequest()
	req.PaymentMethodID = gateway
	req.UseDeliveryBatch = true
	return req
}

func assertEvents(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}
