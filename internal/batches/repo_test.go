package batches

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
)

func setupBatchesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS delivery_batches (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  shipping_cost TEXT NOT NULL,
  shipping_address_id TEXT NOT NULL,
  shipping_method_id TEXT NOT NULL,
  relay_point TEXT,
  payment_method TEXT NOT NULL,
  woocommerce_order_id INTEGER,
  validate_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_delivery_batches_pending_user ON delivery_batches (user_id) WHERE status = 'pending';`).Error)
	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS delivery_batch_items (
  id TEXT PRIMARY KEY,
  batch_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  variation_id INTEGER NOT NULL DEFAULT 0,
  name TEXT NOT NULL,
  slug TEXT,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  total_price TEXT NOT NULL,
  image_url TEXT,
  woocommerce_order_id INTEGER,
  payment_intent_id TEXT,
  created_at DATETIME
);`).Error)
	return conn
}

func newBatch(userID uuid.UUID, validateAt time.Time) *models.DeliveryBatch {
	return &models.DeliveryBatch{
		UserID:            userID,
		ShippingCost:      decimal.RequireFromString("4.90"),
		ShippingAddressID: uuid.New(),
		ShippingMethodID:  "1:3",
		PaymentMethod:     "stripe",
		ValidateAt:        validateAt,
	}
}

func TestCreateEnforcesOnePendingBatch(t *testing.T) {
	repo := NewRepository(setupBatchesTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newBatch(userID, now.Add(time.Hour))))
	err := repo.Create(ctx, newBatch(userID, now.Add(2*time.Hour)))
	assert.True(t, errors.Is(err, ErrPendingBatchExists), "got %v", err)

	require.NoError(t, repo.Create(ctx, newBatch(uuid.New(), now.Add(time.Hour))))
}

func TestFindActiveAndCloseExpired(t *testing.T) {
	repo := NewRepository(setupBatchesTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	expired := newBatch(userID, now.Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, expired))

	active, err := repo.FindActive(ctx, userID, now)
	require.NoError(t, err)
	assert.Nil(t, active, "an elapsed batch is not active")

	closed, err := repo.CloseExpired(ctx, &userID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	fresh := newBatch(userID, now.Add(7*24*time.Hour))
	require.NoError(t, repo.Create(ctx, fresh), "closing the expired batch frees the pending slot")

	woo := int64(900)
	intent := "pi_123"
	require.NoError(t, repo.InsertItems(ctx, []models.DeliveryBatchItem{{
		BatchID: fresh.ID, ProductID: 4, Name: "Savon", Quantity: 1,
		UnitPrice: decimal.NewFromInt(12), TotalPrice: decimal.NewFromInt(12),
		WooCommerceOrderID: &woo, PaymentIntentID: &intent,
	}}))
	require.NoError(t, repo.SetWooCommerceOrder(ctx, fresh.ID, woo))

	active, err = repo.FindActive(ctx, userID, now)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, fresh.ID, active.ID)
	require.NotNil(t, active.WooCommerceOrderID)
	assert.Equal(t, woo, *active.WooCommerceOrderID)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "pi_123", *active.Items[0].PaymentIntentID)
}

func TestCancelOnlyPending(t *testing.T) {
	conn := setupBatchesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	batch := newBatch(uuid.New(), time.Now().UTC().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, batch))

	require.NoError(t, repo.Cancel(ctx, batch.ID))
	var stored models.DeliveryBatch
	require.NoError(t, conn.First(&stored, "id = ?", batch.ID).Error)
	assert.Equal(t, enums.DeliveryBatchStatusCancelled, stored.Status)
}

func TestServiceValidateExpiredSweepsAllUsers(t *testing.T) {
	repo := NewRepository(setupBatchesTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newBatch(uuid.New(), now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newBatch(uuid.New(), now.Add(-time.Second))))
	require.NoError(t, repo.Create(ctx, newBatch(uuid.New(), now.Add(time.Hour))))

	svc, err := NewService(repo, func() time.Time { return now })
	require.NoError(t, err)
	n, err := svc.ValidateExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
