package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the storefront profile keyed by the Supabase auth user id.
type Profile struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email         *string   `gorm:"column:email"`
	FirstName     *string   `gorm:"column:first_name"`
	LastName      *string   `gorm:"column:last_name"`
	IsBlocked     bool      `gorm:"column:is_blocked;not null;default:false"`
	BlockedReason *string   `gorm:"column:blocked_reason"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
