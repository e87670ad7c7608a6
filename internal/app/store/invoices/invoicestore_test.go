package invoicestore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_NextNumberAndDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	n, err := store.NextNumber(ctx, restID)
	if err != nil || n != "0001" {
		t.Fatalf("first number = %q, %v", n, err)
	}

	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0009", Total: 10})
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0010", Total: 10})
	fixtures.CreateInvoice(ctx, other, testutil.InvoiceParams{Number: "0500", Total: 10})

	n, err = store.NextNumber(ctx, restID)
	if err != nil || n != "0011" {
		t.Errorf("next number = %q, %v; want 0011", n, err)
	}

	_, err = store.Create(ctx, models.Invoice{RestaurantID: restID, Number: "0010", Total: 5})
	if !errors.Is(err, invoicestore.ErrDuplicateNumber) {
		t.Errorf("duplicate number: got %v", err)
	}
	if _, err := store.Create(ctx, models.Invoice{RestaurantID: other, Number: "0010", Total: 5}); err != nil {
		t.Errorf("numbers are per restaurant: %v", err)
	}
}

func TestStore_ScopedReadUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	inv := fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0001", Total: 100, Currency: currency.NIO, Rate: 36.5})

	if _, err := store.GetByID(ctx, other, inv.ID); !errors.Is(err, invoicestore.ErrNotFound) {
		t.Errorf("foreign restaurant read: got %v", err)
	}

	total := 120.0
	method := models.PaymentTransfer
	got, err := store.Update(ctx, restID, inv.ID, invoicestore.Update{Total: &total, PaymentMethod: &method})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Total != 120 || got.PaymentMethod != models.PaymentTransfer {
		t.Errorf("update not applied: %+v", got)
	}
	if got.HistoricalCurrency != currency.NIO || got.HistoricalRate != 36.5 || got.Number != "0001" {
		t.Errorf("frozen fields changed: %+v", got)
	}
	if _, err := store.Update(ctx, other, inv.ID, invoicestore.Update{Total: &total}); !errors.Is(err, invoicestore.ErrNotFound) {
		t.Errorf("foreign restaurant update: got %v", err)
	}

	if n, _ := store.Delete(ctx, other, inv.ID); n != 0 {
		t.Error("foreign restaurant delete must not match")
	}
	if n, err := store.Delete(ctx, restID, inv.ID); err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
}

func TestStore_SumForCashier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	cashier := primitive.NewObjectID()
	someoneElse := primitive.NewObjectID()
	opened := time.Now().UTC().Add(-2 * time.Hour)

	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0001", CashierID: cashier, Method: models.PaymentCash, Total: 100, IssuedAt: opened.Add(time.Minute)})
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0002", CashierID: cashier, Method: models.PaymentCash, Total: 50, IssuedAt: opened.Add(2 * time.Minute)})
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0003", CashierID: cashier, Method: models.PaymentCash, Total: 5, Currency: currency.USD, Rate: 36.5, IssuedAt: opened.Add(3 * time.Minute)})
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0004", CashierID: cashier, Method: models.PaymentTransfer, Total: 70, IssuedAt: opened.Add(4 * time.Minute)})
	// before the session and by another cashier
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0005", CashierID: cashier, Total: 999, IssuedAt: opened.Add(-time.Minute)})
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0006", CashierID: someoneElse, Total: 999, IssuedAt: opened.Add(time.Minute)})

	buckets, err := store.SumForCashier(ctx, restID, cashier, opened, time.Time{})
	if err != nil {
		t.Fatalf("SumForCashier: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("buckets = %+v, want 3", buckets)
	}
	for _, b := range buckets {
		switch {
		case b.PaymentMethod == models.PaymentCash && b.HistoricalCurrency == string(currency.NIO):
			if b.Total != 150 || b.Count != 2 {
				t.Errorf("cash NIO bucket = %+v", b)
			}
		case b.PaymentMethod == models.PaymentCash && b.HistoricalCurrency == string(currency.USD):
			if b.Total != 5 || b.HistoricalRate != 36.5 {
				t.Errorf("cash USD bucket = %+v", b)
			}
		case b.PaymentMethod == models.PaymentTransfer:
			if b.Total != 70 {
				t.Errorf("card bucket = %+v", b)
			}
		default:
			t.Errorf("unexpected bucket %+v", b)
		}
	}
}

func TestStore_SalesRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := fixtures.CreateRestaurant(ctx, 1, "La Fonda")
	cashier := fixtures.CreateUser(ctx, rest.ID, "caja1", "caja1@example.com", nil)
	t4 := fixtures.CreateTable(ctx, rest.ID, 4)
	onTable := fixtures.CreateOrder(ctx, rest.ID, 1, &t4, models.OrderPaid,
		models.OrderItem{ProductID: primitive.NewObjectID(), Name: "Gallo pinto", Quantity: 2, Price: 60})
	takeout := fixtures.CreateOrder(ctx, rest.ID, 2, nil, models.OrderPaid)

	now := time.Now().UTC()
	fixtures.CreateInvoice(ctx, rest.ID, testutil.InvoiceParams{Number: "0001", OrderID: onTable.ID, CashierID: cashier.ID, Total: 120, IssuedAt: now.Add(-time.Hour)})
	fixtures.CreateInvoice(ctx, rest.ID, testutil.InvoiceParams{Number: "0002", OrderID: takeout.ID, Total: 40, IssuedAt: now.Add(-30 * time.Minute)})
	fixtures.CreateInvoice(ctx, rest.ID, testutil.InvoiceParams{Number: "0003", Total: 10, IssuedAt: now.Add(-48 * time.Hour)})

	rows, err := store.SalesRows(ctx, rest.ID, invoicestore.SalesFilter{From: now.Add(-24 * time.Hour)})
	if err != nil {
		t.Fatalf("SalesRows: %v", err)
	}
	if len(rows) != 2 || rows[0].Number != "0002" {
		t.Fatalf("rows = %+v, want 0002 then 0001", rows)
	}
	if rows[1].TableNumber != 4 || rows[1].Cashier != "caja1" || len(rows[1].Items) != 1 {
		t.Errorf("join not applied: %+v", rows[1])
	}

	rows, _ = store.SalesRows(ctx, rest.ID, invoicestore.SalesFilter{From: now.Add(-24 * time.Hour), TableNumber: 4})
	if len(rows) != 1 || rows[0].Number != "0001" {
		t.Errorf("table filter: %+v", rows)
	}
	rows, _ = store.SalesRows(ctx, rest.ID, invoicestore.SalesFilter{From: now.Add(-24 * time.Hour), EmployeeName: "CAJA"})
	if len(rows) != 1 || rows[0].Number != "0001" {
		t.Errorf("employee filter: %+v", rows)
	}
}

func TestStore_PeakHours(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, h := range []int{12, 12, 12, 19, 19, 8} {
		fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{
			Number:   fmt.Sprintf("%04d", i+1),
			Total:    10,
			IssuedAt: day.Add(time.Duration(h)*time.Hour + 15*time.Minute),
		})
	}

	hours, err := store.PeakHours(ctx, restID, day, day.Add(24*time.Hour), time.UTC, 2)
	if err != nil {
		t.Fatalf("PeakHours: %v", err)
	}
	if len(hours) != 2 || hours[0].Hour != 12 || hours[0].Count != 3 || hours[1].Hour != 19 {
		t.Errorf("hours = %+v", hours)
	}
}
