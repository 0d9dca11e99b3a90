package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/pkg/db"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
)

type finder interface {
	FindByNumber(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error)
}

// Service serves order lookups for the confirmation page.
type Service interface {
	GetByNumber(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error)
}

type service struct {
	repo finder
}

func NewService(repo finder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByNumber(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByNumber(ctx, userID, number)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
