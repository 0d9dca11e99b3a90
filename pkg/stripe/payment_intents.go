package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

// PaymentIntentRequest describes an intent created during checkout.
type PaymentIntentRequest struct {
	AmountMinor    int64
	Currency       string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// PaymentIntents is the subset of Stripe used by checkout.
type PaymentIntents interface {
	Create(ctx context.Context, req PaymentIntentRequest) (string, error)
	Cancel(ctx context.Context, id string) error
}

type paymentIntents struct {
	api      *stripe.Client
	currency string
}

// NewPaymentIntents wraps the configured client so checkout can be tested with stubs.
func NewPaymentIntents(client *Client) (PaymentIntents, error) {
	if client == nil || client.API() == nil {
		return nil, errors.New("stripe client required")
	}
	return &paymentIntents{api: client.API(), currency: client.Currency()}, nil
}

func (p *paymentIntents) Create(ctx context.Context, req PaymentIntentRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", fmt.Errorf("payment intent amount must be positive, got %d", req.AmountMinor)
	}
	currency := req.Currency
	if currency == "" {
		currency = p.currency
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	intent, err := p.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return "", err
	}
	return intent.ID, nil
}

func (p *paymentIntents) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	_, err := p.api.V1PaymentIntents.Cancel(ctx, id, params)
	return err
}
