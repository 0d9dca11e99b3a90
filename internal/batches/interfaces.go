package batches

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

// BatchRepository is the persistence surface used by checkout and the expiry job.
type BatchRepository interface {
	WithTx(tx *gorm.DB) BatchRepository
	FindActive(ctx context.Context, userID uuid.UUID, now time.Time) (*models.DeliveryBatch, error)
	CloseExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error)
	Create(ctx context.Context, batch *models.DeliveryBatch) error
	SetWooCommerceOrder(ctx context.Context, batchID uuid.UUID, wooOrderID int64) error
	Cancel(ctx context.Context, batchID uuid.UUID) error
	InsertItems(ctx context.Context, items []models.DeliveryBatchItem) error
}
