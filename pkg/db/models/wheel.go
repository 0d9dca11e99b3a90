package models

import (
	"time"

	"github.com/google/uuid"
)

// WheelZone is one slice of the wheel. Probability is an unnormalised weight.
type WheelZone struct {
	Label        string     `json:"label"`
	Probability  float64    `json:"probability"`
	CouponTypeID *uuid.UUID `json:"coupon_type_id,omitempty"`
	Color        string     `json:"color,omitempty"`
}

// WheelGameSettings holds the single active wheel configuration.
// MaxPlaysPerUser and MaxPlaysPerDay of 0 disable the respective cap.
type WheelGameSettings struct {
	ID              uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IsActive        bool        `gorm:"column:is_active;not null;default:false"`
	RequireAuth     bool        `gorm:"column:require_auth;not null;default:true"`
	MaxPlaysPerUser int         `gorm:"column:max_plays_per_user;not null;default:0"`
	MaxPlaysPerDay  int         `gorm:"column:max_plays_per_day;not null;default:1"`
	WinningZones    []WheelZone `gorm:"column:winning_zones;type:jsonb;serializer:json"`
	LosingZones     []WheelZone `gorm:"column:losing_zones;type:jsonb;serializer:json"`
	UpdatedAt       time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (WheelGameSettings) TableName() string { return "wheel_game_settings" }

// WheelGamePlay logs one spin, by a user or an anonymous session.
type WheelGamePlay struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid"`
	SessionID    *string    `gorm:"column:session_id"`
	ZoneLabel    string     `gorm:"column:zone_label;not null"`
	IsWinner     bool       `gorm:"column:is_winner;not null"`
	CouponTypeID *uuid.UUID `gorm:"column:coupon_type_id;type:uuid"`
	UserCouponID *uuid.UUID `gorm:"column:user_coupon_id;type:uuid"`
	PlayedAt     time.Time  `gorm:"column:played_at;not null"`
}
