package registerstore_test

import (
	"errors"
	"testing"
	"time"

	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func openSession(restID, cashierID primitive.ObjectID, name string, openedAt time.Time) models.RegisterSession {
	return models.RegisterSession{
		RestaurantID:       restID,
		OpeningCashierID:   cashierID,
		CashierName:        name,
		OpenedAt:           openedAt,
		OpeningFloat:       500,
		HistoricalCurrency: currency.NIO,
		HistoricalRate:     36.5,
	}
}

func TestStore_Insert_OneOpenPerCashier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	cashier := primitive.NewObjectID()

	first, err := store.Insert(ctx, openSession(restID, cashier, "ana", time.Time{}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if first.State != models.RegisterOpen || first.OpenedAt.IsZero() {
		t.Errorf("unexpected session: %+v", first)
	}

	_, err = store.Insert(ctx, openSession(restID, cashier, "ana", time.Time{}))
	if !errors.Is(err, registerstore.ErrAlreadyOpen) {
		t.Fatalf("second open: got %v, want ErrAlreadyOpen", err)
	}

	// another cashier, or the same cashier elsewhere, may open
	if _, err := store.Insert(ctx, openSession(restID, primitive.NewObjectID(), "luis", time.Time{})); err != nil {
		t.Errorf("other cashier: %v", err)
	}
	if _, err := store.Insert(ctx, openSession(primitive.NewObjectID(), cashier, "ana", time.Time{})); err != nil {
		t.Errorf("other restaurant: %v", err)
	}

	// once closed, the cashier may open again
	if _, err := store.Close(ctx, first.ID, registerstore.CloseFields{ClosedAt: time.Now(), ClosingCashierID: cashier}); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := store.Insert(ctx, openSession(restID, cashier, "ana", time.Time{})); err != nil {
		t.Errorf("reopen after close: %v", err)
	}
}

func TestStore_Close_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cashier := primitive.NewObjectID()
	rs, err := store.Insert(ctx, openSession(primitive.NewObjectID(), cashier, "ana", time.Time{}))
	if err != nil {
		t.Fatal(err)
	}

	closedAt := time.Now().UTC().Truncate(time.Millisecond)
	got, err := store.Close(ctx, rs.ID, registerstore.CloseFields{
		ClosedAt:         closedAt,
		ClosingCashierID: cashier,
		SystemCashSales:  800,
		ExpectedCash:     1300,
		ActualCash:       1290,
		Difference:       -10,
		Deviation:        models.DeviationNormal,
		Notes:            "faltan 10",
	})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got.IsOpen() || got.ClosedAt == nil || !got.ClosedAt.Equal(closedAt) {
		t.Errorf("close not applied: %+v", got)
	}
	if got.Difference != -10 || got.HistoricalRate != 36.5 || got.OpeningFloat != 500 {
		t.Errorf("fields wrong after close: %+v", got)
	}

	_, err = store.Close(ctx, rs.ID, registerstore.CloseFields{ClosedAt: time.Now()})
	if !errors.Is(err, registerstore.ErrNotOpen) {
		t.Errorf("second close: got %v, want ErrNotOpen", err)
	}
	again, _ := store.GetByID(ctx, rs.ID)
	if !again.ClosedAt.Equal(closedAt) {
		t.Error("closed_at must be written once")
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, registerstore.ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
}

func TestStore_FindOpenAndHasOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	cashier := primitive.NewObjectID()

	if has, err := store.HasOpen(ctx, restID); err != nil || has {
		t.Errorf("HasOpen on empty = %v, %v", has, err)
	}
	if _, err := store.FindOpen(ctx, restID, cashier); !errors.Is(err, registerstore.ErrNotFound) {
		t.Errorf("FindOpen on empty: got %v", err)
	}

	rs, _ := store.Insert(ctx, openSession(restID, cashier, "ana", time.Time{}))
	got, err := store.FindOpen(ctx, restID, cashier)
	if err != nil || got.ID != rs.ID {
		t.Errorf("FindOpen = %v, %v", got.ID, err)
	}
	if has, _ := store.HasOpen(ctx, restID); !has {
		t.Error("expected an open session")
	}
}

func TestStore_ListAndOpenedBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := registerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	now := time.Now().UTC()

	old, _ := store.Insert(ctx, openSession(restID, primitive.NewObjectID(), "Ana Pérez", now.Add(-30*time.Hour)))
	mid, _ := store.Insert(ctx, openSession(restID, primitive.NewObjectID(), "Luis", now.Add(-5*time.Hour)))
	recent, _ := store.Insert(ctx, openSession(restID, primitive.NewObjectID(), "ana maría", now.Add(-time.Hour)))
	if _, err := store.Close(ctx, mid.ID, registerstore.CloseFields{ClosedAt: now}); err != nil {
		t.Fatal(err)
	}
	store.Insert(ctx, openSession(primitive.NewObjectID(), primitive.NewObjectID(), "Ana", now))

	all, err := store.List(ctx, restID, registerstore.ListFilter{})
	if err != nil || len(all) != 3 || all[0].ID != recent.ID || all[2].ID != old.ID {
		t.Fatalf("List = %d sessions, %v", len(all), err)
	}

	byName, _ := store.List(ctx, restID, registerstore.ListFilter{CashierName: "ANA"})
	if len(byName) != 2 {
		t.Errorf("cashier filter = %d, want 2", len(byName))
	}
	open, _ := store.List(ctx, restID, registerstore.ListFilter{State: models.RegisterOpen})
	if len(open) != 2 {
		t.Errorf("state filter = %d, want 2", len(open))
	}
	ranged, _ := store.List(ctx, restID, registerstore.ListFilter{From: now.Add(-10 * time.Hour), To: now.Add(-2 * time.Hour)})
	if len(ranged) != 1 || ranged[0].ID != mid.ID {
		t.Errorf("range filter = %+v", ranged)
	}

	stale, err := store.OpenedBefore(ctx, now.Add(-24*time.Hour))
	if err != nil || len(stale) != 1 || stale[0].ID != old.ID {
		t.Errorf("OpenedBefore = %+v, %v", stale, err)
	}
}
