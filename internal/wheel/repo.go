package wheel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveSettings returns the most recently updated active configuration, or
// nil when the wheel is switched off.
func (r *Repository) ActiveSettings(ctx context.Context) (*models.WheelGameSettings, error) {
	var row models.WheelGameSettings
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CountPlays counts plays of the user, or of the session when userID is nil,
// restricted to played_at >= since when since is set.
func (r *Repository) CountPlays(ctx context.Context, userID *uuid.UUID, sessionID string, since *time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WheelGamePlay{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	} else {
		q = q.Where("user_id IS NULL AND session_id = ?", sessionID)
	}
	if since != nil {
		q = q.Where("played_at >= ?", *since)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *Repository) LogPlay(ctx context.Context, play *models.WheelGamePlay) error {
	if play.ID == uuid.Nil {
		play.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(play).Error
}
