package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/angelmondragon/boutique-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
)

type stubCheckoutService struct {
	userID    uuid.UUID
	selection checkoutsvc.Selection
	submitted *checkoutsvc.SubmitRequest
	result    *checkoutsvc.Result
	err       error
}

func (s *stubCheckoutService) Context(_ context.Context, userID uuid.UUID) (*checkoutsvc.Context, error) {
	s.userID = userID
	return &checkoutsvc.Context{}, s.err
}

func (s *stubCheckoutService) Quote(_ context.Context, userID uuid.UUID, sel checkoutsvc.Selection) (*checkoutsvc.Quote, error) {
	s.userID = userID
	s.selection = sel
	return &checkoutsvc.Quote{}, s.err
}

func (s *stubCheckoutService) Submit(_ context.Context, userID uuid.UUID, req checkoutsvc.SubmitRequest) (*checkoutsvc.Result, error) {
	s.userID = userID
	s.submitted = &req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestCheckoutSubmitCreated(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		Path:          "direct",
		AmountCharged: decimal.RequireFromString("32.89"),
		NextRoute:     "/checkout/confirmation/CMD-1",
	}}
	req, userID := authedRequest(http.MethodPost, "/api/v1/checkout",
		`{"shipping_method_id":"1:3","payment_method_id":"bacs","customer_note":"  sonnez deux fois  "}`)
	req.Header.Set("Idempotency-Key", "key-1")
	resp := httptest.NewRecorder()

	CheckoutSubmit(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.userID != userID || svc.submitted == nil {
		t.Fatalf("service not called for the authenticated user")
	}
	if svc.submitted.IdempotencyKey != "key-1" {
		t.Fatalf("idempotency key not forwarded: %q", svc.submitted.IdempotencyKey)
	}
	if svc.submitted.CustomerNote != "sonnez deux fois" || svc.submitted.ShippingMethodID != "1:3" {
		t.Fatalf("unexpected selection %+v", svc.submitted.Selection)
	}
	data, _ := dataField(t, resp).(map[string]any)
	if data["next_route"] != "/checkout/confirmation/CMD-1" || data["amount_charged"] != "32.89" {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestCheckoutSubmitGateErrorCarriesReason(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").WithDetail("reason", "cart_empty")}
	req, _ := authedRequest(http.MethodPost, "/api/v1/checkout", `{}`)
	resp := httptest.NewRecorder()

	CheckoutSubmit(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	errBody, _ := decodeEnvelope(t, resp)["error"].(map[string]any)
	details, _ := errBody["details"].(map[string]any)
	if details["reason"] != "cart_empty" {
		t.Fatalf("expected reason detail, got %v", errBody)
	}
}

func TestCheckoutSubmitRejectsUnknownFields(t *testing.T) {
	svc := &stubCheckoutService{}
	req, _ := authedRequest(http.MethodPost, "/api/v1/checkout", `{"total":"0.01"}`)
	resp := httptest.NewRecorder()

	CheckoutSubmit(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest || svc.submitted != nil {
		t.Fatalf("client-supplied totals must be rejected, got %d", resp.Code)
	}
}

func TestCheckoutQuoteAcceptsEmptyBody(t *testing.T) {
	svc := &stubCheckoutService{}
	req, userID := authedRequest(http.MethodPost, "/api/v1/checkout/quote", "")
	resp := httptest.NewRecorder()

	CheckoutQuote(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || svc.userID != userID {
		t.Fatalf("expected 200 for empty quote got %d", resp.Code)
	}
}

func TestCheckoutRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	CheckoutContext(&stubCheckoutService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/context", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutSubmitLockedIsRetryable(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeConflict, "a checkout is already in progress").
		WithDetail("reason", checkoutsvc.ReasonCheckoutInProgress)}
	req, _ := authedRequest(http.MethodPost, "/api/v1/checkout", `{}`)
	resp := httptest.NewRecorder()

	CheckoutSubmit(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("locked checkout must be flagged retryable")
	}
}
