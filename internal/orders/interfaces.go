package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

// OrderRepository is the persistence surface used by checkout.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	MarkProcessing(ctx context.Context, id uuid.UUID, wooOrderID int64) error
	FindByNumber(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error)
}
