package batches

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

// BatchDTO is the public view of a delivery batch.
type BatchDTO struct {
	ID                 uuid.UUID                 `json:"id"`
	Status             enums.DeliveryBatchStatus `json:"status"`
	ShippingCost       decimal.Decimal           `json:"shipping_cost"`
	ShippingAddressID  uuid.UUID                 `json:"shipping_address_id"`
	ShippingMethodID   string                    `json:"shipping_method_id"`
	RelayPoint         *types.RelayPoint         `json:"relay_point,omitempty"`
	PaymentMethod      string                    `json:"payment_method"`
	WooCommerceOrderID *int64                    `json:"woocommerce_order_id,omitempty"`
	ValidateAt         time.Time                 `json:"validate_at"`
	CreatedAt          time.Time                 `json:"created_at"`
	Items              []BatchItemDTO            `json:"items"`
}

type BatchItemDTO struct {
	ProductID          int64           `json:"product_id"`
	VariationID        int64           `json:"variation_id,omitempty"`
	Name               string          `json:"name"`
	Slug               *string         `json:"slug,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ImageURL           *string         `json:"image_url,omitempty"`
	WooCommerceOrderID *int64          `json:"woocommerce_order_id,omitempty"`
}

func FromModel(batch *models.DeliveryBatch) *BatchDTO {
	if batch == nil {
		return nil
	}
	dto := &BatchDTO{
		ID:                 batch.ID,
		Status:             batch.Status,
		ShippingCost:       batch.ShippingCost,
		ShippingAddressID:  batch.ShippingAddressID,
		ShippingMethodID:   batch.ShippingMethodID,
		RelayPoint:         batch.RelayPoint,
		PaymentMethod:      batch.PaymentMethod,
		WooCommerceOrderID: batch.WooCommerceOrderID,
		ValidateAt:         batch.ValidateAt,
		CreatedAt:          batch.CreatedAt,
		Items:              make([]BatchItemDTO, 0, len(batch.Items)),
	}
	for _, item := range batch.Items {
		dto.Items = append(dto.Items, BatchItemDTO{
			ProductID:          item.ProductID,
			VariationID:        item.VariationID,
			Name:               item.Name,
			Slug:               item.Slug,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			TotalPrice:         item.TotalPrice,
			ImageURL:           item.ImageURL,
			WooCommerceOrderID: item.WooCommerceOrderID,
		})
	}
	return dto
}
