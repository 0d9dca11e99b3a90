package accounts

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
)

type AddressDTO struct {
	ID           uuid.UUID `json:"id"`
	Label        *string   `json:"label,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 *string   `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	Phone        *string   `json:"phone,omitempty"`
	IsDefault    bool      `json:"is_default"`
}

func AddressesFromModels(rows []models.Address) []AddressDTO {
	out := make([]AddressDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, AddressDTO{
			ID:           a.ID,
			Label:        a.Label,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			PostalCode:   a.PostalCode,
			Country:      a.Country,
			Phone:        a.Phone,
			IsDefault:    a.IsDefault,
		})
	}
	return out
}
