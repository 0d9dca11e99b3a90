package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db"
	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	"github.com/angelmondragon/boutique-backend/pkg/enums"
)

const orderNumberConstraint = "uniq_orders_order_number"

// ErrDuplicateOrderNumber signals a collision on order_number.
var ErrDuplicateOrderNumber = errors.New("order number already used")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the order then its items. Run it inside a transaction.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	items := order.Items
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = order.ID
	}

	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, orderNumberConstraint) || db.IsUniqueViolation(err, "orders.order_number") {
			return ErrDuplicateOrderNumber
		}
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// MarkFailed flags a pending order whose checkout did not complete.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Update("status", enums.OrderStatusFailed).Error
}

// MarkProcessing links the WooCommerce order and moves the order to processing.
func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID, wooOrderID int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(map[string]any{
			"woocommerce_order_id": wooOrderID,
			"status":               enums.OrderStatusProcessing,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) FindByNumber(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND order_number = ?", userID, number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
