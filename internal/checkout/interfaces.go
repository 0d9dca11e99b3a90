package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/internal/checkoutoptions"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Get(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type accountReader interface {
	FindProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type optionsProvider interface {
	Get(ctx context.Context) (*checkoutoptions.Options, error)
	Refresh(ctx context.Context) (*checkoutoptions.Options, error)
}
