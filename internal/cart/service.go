package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

// Service owns the server cart of authenticated users.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error)
	Sync(ctx context.Context, userID uuid.UUID, lines []types.CartLine) ([]types.CartLine, error)
	MergeOnLogin(ctx context.Context, userID uuid.UUID, local []types.CartLine) ([]types.CartLine, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo CartRepository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo CartRepository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return toLines(rows), nil
}

// Sync replaces the stored cart with lines: rows absent from lines are deleted
// one by one, then every line is upserted.
func (s *service) Sync(ctx context.Context, userID uuid.UUID, lines []types.CartLine) ([]types.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	for _, line := range lines {
		if line.ProductID <= 0 || line.Quantity <= 0 || line.VariationID < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart lines require a product id and a positive quantity").
				WithDetail("product_id", line.ProductID)
		}
		if line.UnitPrice().IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line price must be non-negative").
				WithDetail("product_id", line.ProductID)
		}
	}
	lines = dedupe(lines)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		keep := make(map[lineKey]struct{}, len(lines))
		for _, line := range lines {
			keep[keyOf(line)] = struct{}{}
		}
		for _, row := range existing {
			if _, ok := keep[lineKey{productID: row.ProductID, variationID: row.VariationID}]; ok {
				continue
			}
			if err := repo.DeleteLine(ctx, userID, row.ProductID, row.VariationID); err != nil {
				return err
			}
		}
		return repo.Upsert(ctx, toModels(userID, lines))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sync cart")
	}
	return lines, nil
}

// MergeOnLogin folds the anonymous cart into the server cart and persists the
// result. The caller clears its local cart whatever the outcome.
func (s *service) MergeOnLogin(ctx context.Context, userID uuid.UUID, local []types.CartLine) ([]types.CartLine, error) {
	server, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(local) == 0 {
		return server, nil
	}
	merged := Merge(server, local)
	ctx = s.logg.WithUserID(ctx, userID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"serverLines": len(server),
		"localLines":  len(local),
		"mergedLines": len(merged),
	}), "merging local cart")
	return s.Sync(ctx, userID, merged)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func toLines(rows []models.CartItem) []types.CartLine {
	lines := make([]types.CartLine, 0, len(rows))
	for _, row := range rows {
		line := types.CartLine{
			ProductID:          row.ProductID,
			VariationID:        row.VariationID,
			Name:               row.Name,
			Price:              row.Price,
			Quantity:           row.Quantity,
			VariationPrice:     row.VariationPrice,
			VariationImage:     row.VariationImage,
			SelectedAttributes: row.SelectedAttributes,
		}
		if row.Slug != nil {
			line.Slug = *row.Slug
		}
		if row.Image != nil {
			line.Image = *row.Image
		}
		lines = append(lines, line)
	}
	return lines
}

func toModels(userID uuid.UUID, lines []types.CartLine) []models.CartItem {
	rows := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.CartItem{
			UserID:             userID,
			ProductID:          line.ProductID,
			VariationID:        line.VariationID,
			Name:               line.Name,
			Slug:               optionalString(line.Slug),
			Price:              line.Price,
			Image:              optionalString(line.Image),
			Quantity:           line.Quantity,
			VariationPrice:     line.VariationPrice,
			VariationImage:     line.VariationImage,
			SelectedAttributes: line.SelectedAttributes,
		})
	}
	return rows
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
