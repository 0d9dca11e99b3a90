package cart

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/boutique-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/types"
)

type stubCartRepo struct {
	rows      []models.CartItem
	deleted   []lineKey
	upserted  []models.CartItem
	cleared   bool
	listErr   error
	upsertErr error
}

func (s *stubCartRepo) WithTx(*gorm.DB) CartRepository { return s }

func (s *stubCartRepo) ListByUser(context.Context, uuid.UUID) ([]models.CartItem, error) {
	return s.rows, s.listErr
}

func (s *stubCartRepo) DeleteLine(_ context.Context, _ uuid.UUID, productID, variationID int64) error {
	s.deleted = append(s.deleted, lineKey{productID: productID, variationID: variationID})
	return nil
}

func (s *stubCartRepo) Upsert(_ context.Context, items []models.CartItem) error {
	s.upserted = append(s.upserted, items...)
	return s.upsertErr
}

func (s *stubCartRepo) DeleteByUser(context.Context, uuid.UUID) error {
	s.cleared = true
	return nil
}

type stubTx struct{ calls int }

func (s *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubCartRepo) (Service, *stubTx) {
	t.Helper()
	tx := &stubTx{}
	svc, err := NewService(repo, tx, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, tx
}

func TestSyncDeletesMissingRowsThenUpserts(t *testing.T) {
	userID := uuid.New()
	repo := &stubCartRepo{rows: []models.CartItem{
		{UserID: userID, ProductID: 1, VariationID: 0, Quantity: 1},
		{UserID: userID, ProductID: 1, VariationID: 4, Quantity: 1},
		{UserID: userID, ProductID: 2, VariationID: 0, Quantity: 1},
	}}
	svc, tx := newTestService(t, repo)

	_, err := svc.Sync(context.Background(), userID, []types.CartLine{line(1, 0, 3), line(5, 0, 1)})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", tx.calls)
	}
	if len(repo.deleted) != 2 || repo.deleted[0] != (lineKey{1, 4}) || repo.deleted[1] != (lineKey{2, 0}) {
		t.Fatalf("unexpected deletions %+v", repo.deleted)
	}
	if len(repo.upserted) != 2 || repo.upserted[0].Quantity != 3 || repo.upserted[0].UserID != userID {
		t.Fatalf("unexpected upserts %+v", repo.upserted)
	}
}

func TestSyncRejectsInvalidLines(t *testing.T) {
	svc, tx := newTestService(t, &stubCartRepo{})
	_, err := svc.Sync(context.Background(), uuid.New(), []types.CartLine{line(1, 0, 0)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if tx.calls != 0 {
		t.Fatalf("no transaction expected for invalid input")
	}
}

func TestSyncWrapsRepositoryErrors(t *testing.T) {
	svc, _ := newTestService(t, &stubCartRepo{upsertErr: errors.New("db down")})
	_, err := svc.Sync(context.Background(), uuid.New(), []types.CartLine{line(1, 0, 1)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestMergeOnLoginWithEmptyLocalReturnsServer(t *testing.T) {
	userID := uuid.New()
	repo := &stubCartRepo{rows: []models.CartItem{{UserID: userID, ProductID: 1, Name: "a", Quantity: 2}}}
	svc, tx := newTestService(t, repo)

	got, err := svc.MergeOnLogin(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got) != 1 || got[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", got)
	}
	if tx.calls != 0 || len(repo.upserted) != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestMergeOnLoginWritesMergedCart(t *testing.T) {
	userID := uuid.New()
	repo := &stubCartRepo{rows: []models.CartItem{{UserID: userID, ProductID: 1, Name: "a", Quantity: 2}}}
	svc, _ := newTestService(t, repo)

	got, err := svc.MergeOnLogin(context.Background(), userID, []types.CartLine{line(1, 0, 5), line(8, 3, 1)})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got) != 2 || got[0].Quantity != 5 || got[1].VariationID != 0 {
		t.Fatalf("unexpected merged cart %+v", got)
	}
	if len(repo.upserted) != 2 {
		t.Fatalf("expected merged cart persisted, got %+v", repo.upserted)
	}
}

func TestMergeOnLoginLogsLineCountsAsFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: logger.FormatJSON})
	userID := uuid.New()
	repo := &stubCartRepo{rows: []models.CartItem{{UserID: userID, ProductID: 1, Name: "a", Quantity: 2}}}
	svc, err := NewService(repo, &stubTx{}, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.MergeOnLogin(context.Background(), userID, []types.CartLine{line(1, 0, 5), line(8, 3, 1)}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, field := range []string{`"message":"merging local cart"`, `"serverLines":1`, `"localLines":2`, `"mergedLines":2`} {
		if !bytes.Contains(buf.Bytes(), []byte(field)) {
			t.Fatalf("expected %s in entry=%s", field, buf.String())
		}
	}
}

func TestClearRequiresUser(t *testing.T) {
	repo := &stubCartRepo{}
	svc, _ := newTestService(t, repo)
	if err := svc.Clear(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.Clear(context.Background(), uuid.New()); err != nil || !repo.cleared {
		t.Fatalf("expected cart cleared, err=%v", err)
	}
}
