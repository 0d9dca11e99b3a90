package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ddl := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  variation_id INTEGER NOT NULL DEFAULT 0,
  name TEXT NOT NULL,
  slug TEXT,
  price TEXT NOT NULL,
  image TEXT,
  quantity INTEGER NOT NULL,
  variation_price TEXT,
  variation_image TEXT,
  selected_attributes TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uniq_cart_items_user_product_variation UNIQUE (user_id, product_id, variation_id)
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func cartRow(userID uuid.UUID, productID, variationID int64, qty int) models.CartItem {
	return models.CartItem{
		UserID:      userID,
		ProductID:   productID,
		VariationID: variationID,
		Name:        fmt.Sprintf("product-%d", productID),
		Price:       decimal.RequireFromString("9.90"),
		Quantity:    qty,
	}
}

func TestRepositoryUpsertUpdatesOnConflictKey(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, []models.CartItem{cartRow(userID, 1, 0, 1), cartRow(userID, 1, 5, 2)}))
	require.NoError(t, repo.Upsert(ctx, []models.CartItem{cartRow(userID, 1, 0, 4)}))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byVariation := map[int64]int{}
	for _, item := range items {
		byVariation[item.VariationID] = item.Quantity
	}
	assert.Equal(t, 4, byVariation[0])
	assert.Equal(t, 2, byVariation[5])
}

func TestRepositoryDeleteLineAndClear(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	require.NoError(t, repo.Upsert(ctx, []models.CartItem{
		cartRow(userID, 1, 0, 1),
		cartRow(userID, 2, 0, 1),
		cartRow(other, 1, 0, 1),
	}))

	require.NoError(t, repo.DeleteLine(ctx, userID, 1, 0))
	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)

	require.NoError(t, repo.DeleteByUser(ctx, userID))
	items, err = repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	otherItems, err := repo.ListByUser(ctx, other)
	require.NoError(t, err)
	assert.Len(t, otherItems, 1)
}

func TestServiceSyncAgainstSQLite(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, gormTx{db: db}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, repo.Upsert(ctx, []models.CartItem{cartRow(userID, 1, 0, 1), cartRow(userID, 2, 0, 1)}))

	_, err = svc.Sync(ctx, userID, []types.CartLine{line(2, 0, 3), line(3, 0, 1)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	quantities := map[int64]int{}
	for _, l := range got {
		quantities[l.ProductID] = l.Quantity
	}
	assert.Equal(t, map[int64]int{2: 3, 3: 1}, quantities)
}

type gormTx struct{ db *gorm.DB }

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}
