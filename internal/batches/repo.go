package batches

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
)

const pendingUserConstraint = "uniq_delivery_batches_pending_user"

// ErrPendingBatchExists is returned when the user already has a pending batch.
var ErrPendingBatchExists = errors.New("user already has a pending delivery batch")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) BatchRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActive returns the pending batch of the user whose validate_at is after
// now, or nil when there is none.
func (r *Repository) FindActive(ctx context.Context, userID uuid.UUID, now time.Time) (*models.DeliveryBatch, error) {
	var batch models.DeliveryBatch
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Where("user_id = ? AND status = ? AND validate_at > ?", userID, enums.DeliveryBatchStatusPending, now).
		Order("created_at DESC").
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// CloseExpired validates pending batches whose window has elapsed. A nil
// userID closes them for every user.
func (r *Repository) CloseExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.DeliveryBatch{}).
		Where("status = ? AND validate_at <= ?", enums.DeliveryBatchStatusPending, now)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	res := q.Updates(map[string]any{
		"status":     enums.DeliveryBatchStatusValidated,
		"updated_at": now,
	})
	return res.RowsAffected, res.Error
}

func (r *Repository) Create(ctx context.Context, batch *models.DeliveryBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.Status == "" {
		batch.Status = enums.DeliveryBatchStatusPending
	}
	err := r.db.WithContext(ctx).Omit("Items").Create(batch).Error
	if db.IsUniqueViolation(err, pendingUserConstraint) || db.IsUniqueViolation(err, "delivery_batches.user_id") {
		return ErrPendingBatchExists
	}
	return err
}

func (r *Repository) SetWooCommerceOrder(ctx context.Context, batchID uuid.UUID, wooOrderID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryBatch{}).
		Where("id = ?", batchID).
		Update("woocommerce_order_id", wooOrderID).Error
}

// Cancel marks a still pending batch cancelled.
func (r *Repository) Cancel(ctx context.Context, batchID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryBatch{}).
		Where("id = ? AND status = ?", batchID, enums.DeliveryBatchStatusPending).
		Update("status", enums.DeliveryBatchStatusCancelled).Error
}

func (r *Repository) InsertItems(ctx context.Context, items []models.DeliveryBatchItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
