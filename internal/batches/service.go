package batches

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
)

type store interface {
	FindActive(ctx context.Context, userID uuid.UUID, now time.Time) (*models.DeliveryBatch, error)
	CloseExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error)
}

// Service exposes delivery batch reads and the expiry sweep.
type Service interface {
	Active(ctx context.Context, userID uuid.UUID) (*models.DeliveryBatch, error)
	ValidateExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo store
	now  func() time.Time
}

func NewService(repo store, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery batch repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

// Active returns nil when the user has no active batch.
func (s *service) Active(ctx context.Context, userID uuid.UUID) (*models.DeliveryBatch, error) {
	batch, err := s.repo.FindActive(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active delivery batch")
	}
	return batch, nil
}

// ValidateExpired closes every pending batch whose window has elapsed.
func (s *service) ValidateExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.CloseExpired(ctx, nil, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate expired delivery batches")
	}
	return n, nil
}
