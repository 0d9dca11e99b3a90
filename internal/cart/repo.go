package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

// Repository persists server-side cart rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, product_id ASC").
		Find(&items).Error
	return items, err
}

// DeleteLine removes the row keyed by (product_id, variation_id).
func (r *Repository) DeleteLine(ctx context.Context, userID uuid.UUID, productID, variationID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variation_id = ?", userID, productID, variationID).
		Delete(&models.CartItem{}).Error
}

// Upsert writes every row using (user_id, product_id, variation_id) as the conflict key.
func (r *Repository) Upsert(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
		items[i].UpdatedAt = now
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "slug", "price", "image", "quantity",
				"variation_price", "variation_image", "selected_attributes", "updated_at",
			}),
		}).
		Create(&items).Error
}

func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
