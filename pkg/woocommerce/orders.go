package woocommerce

import (
	"context"
	"fmt"
	"net/http"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusOnHold     = "on-hold"
	OrderStatusCancelled  = "cancelled"
)

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LineItem struct {
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id,omitempty"`
	Quantity    int   `json:"quantity"`
}

type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

type FeeLine struct {
	Name      string `json:"name"`
	Total     string `json:"total"`
	TaxStatus string `json:"tax_status,omitempty"`
}

type MetaData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// OrderRequest is the POST /orders payload.
type OrderRequest struct {
	PaymentMethod      string         `json:"payment_method"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	SetPaid            bool           `json:"set_paid"`
	Status             string         `json:"status,omitempty"`
	CustomerNote       string         `json:"customer_note,omitempty"`
	Billing            Address        `json:"billing"`
	Shipping           Address        `json:"shipping"`
	LineItems          []LineItem     `json:"line_items"`
	ShippingLines      []ShippingLine `json:"shipping_lines"`
	FeeLines           []FeeLine      `json:"fee_lines,omitempty"`
	MetaData           []MetaData     `json:"meta_data,omitempty"`
}

// Order is the subset of the created order the checkout keeps.
type Order struct {
	ID     *int64 `json:"id" validate:"required,gt=0"`
	Number string `json:"number"`
	Status string `json:"status" validate:"required"`
}

// Orders is the order surface used by checkout.
type Orders interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("woocommerce order requires line items")
	}
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order, "create order"); err != nil {
		return nil, err
	}
	if err := validateDecoded("create order", order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	if id <= 0 {
		return fmt.Errorf("woocommerce order id must be positive")
	}
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), body, nil, "update order")
}
