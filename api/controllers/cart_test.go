package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/boutique-backend/pkg/types"
)

type stubCartService struct {
	lines   []types.CartLine
	synced  []types.CartLine
	merged  []types.CartLine
	cleared bool
}

func (s *stubCartService) Get(context.Context, uuid.UUID) ([]types.CartLine, error) {
	return s.lines, nil
}

func (s *stubCartService) Sync(_ context.Context, _ uuid.UUID, lines []types.CartLine) ([]types.CartLine, error) {
	s.synced = lines
	return lines, nil
}

func (s *stubCartService) MergeOnLogin(_ context.Context, _ uuid.UUID, local []types.CartLine) ([]types.CartLine, error) {
	s.merged = local
	return append(s.lines, local...), nil
}

func (s *stubCartService) Clear(context.Context, uuid.UUID) error {
	s.cleared = true
	return nil
}

func TestCartGetReturnsEmptyList(t *testing.T) {
	req, _ := authedRequest(http.MethodGet, "/api/v1/cart", "")
	resp := httptest.NewRecorder()
	CartGet(&stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	data, _ := dataField(t, resp).(map[string]any)
	lines, ok := data["lines"].([]any)
	if !ok || len(lines) != 0 {
		t.Fatalf("expected empty lines array, got %v", data)
	}
}

func TestCartSyncValidatesLines(t *testing.T) {
	svc := &stubCartService{}
	req, _ := authedRequest(http.MethodPut, "/api/v1/cart", `{"lines":[{"product_id":12,"name":"Bougie","price":"15.00","quantity":0}]}`)
	resp := httptest.NewRecorder()
	CartSync(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest || svc.synced != nil {
		t.Fatalf("zero quantity must be rejected, got %d", resp.Code)
	}
}

func TestCartMergeForwardsLocalLines(t *testing.T) {
	svc := &stubCartService{lines: []types.CartLine{{ProductID: 1, Name: "A", Quantity: 1}}}
	req, _ := authedRequest(http.MethodPost, "/api/v1/cart/merge", `{"lines":[{"product_id":2,"name":"B","price":"9.90","quantity":2}]}`)
	resp := httptest.NewRecorder()
	CartMerge(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.merged) != 1 || svc.merged[0].ProductID != 2 || svc.merged[0].Quantity != 2 {
		t.Fatalf("unexpected merged lines %+v", svc.merged)
	}
}

func TestCartClearNoContent(t *testing.T) {
	svc := &stubCartService{}
	req, _ := authedRequest(http.MethodDelete, "/api/v1/cart", "")
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent || !svc.cleared {
		t.Fatalf("expected 204 and cleared cart, got %d", resp.Code)
	}
}
