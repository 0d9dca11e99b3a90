package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/pkg/types"
)

// Address is a saved shipping address owned by one user.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Label        *string   `gorm:"column:label"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	AddressLine1 string    `gorm:"column:address_line1;not null"`
	AddressLine2 *string   `gorm:"column:address_line2"`
	City         string    `gorm:"column:city;not null"`
	PostalCode   string    `gorm:"column:postal_code;not null"`
	Country      string    `gorm:"column:country;not null;default:'FR'"`
	Phone        *string   `gorm:"column:phone"`
	IsDefault    bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Snapshot copies the address into the value stored on orders.
func (a Address) Snapshot() types.ShippingAddress {
	snap := types.ShippingAddress{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		AddressLine1: a.AddressLine1,
		City:         a.City,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
	if a.AddressLine2 != nil {
		snap.AddressLine2 = *a.AddressLine2
	}
	if a.Phone != nil {
		snap.Phone = *a.Phone
	}
	return snap
}
