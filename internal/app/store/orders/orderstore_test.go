package orderstore_test

import (
	"errors"
	"testing"
	"time"

	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_NumbersPerRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orderstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restA := primitive.NewObjectID()
	restB := primitive.NewObjectID()

	first, err := store.Create(ctx, models.Order{RestaurantID: restA, Items: []models.OrderItem{}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Number != 1 || first.Status != models.OrderPending || first.OrderedAt.IsZero() {
		t.Errorf("unexpected order: %+v", first)
	}
	second, _ := store.Create(ctx, models.Order{RestaurantID: restA, Items: []models.OrderItem{}})
	if second.Number != 2 {
		t.Errorf("second number = %d, want 2", second.Number)
	}
	other, _ := store.Create(ctx, models.Order{RestaurantID: restB, Items: []models.OrderItem{}})
	if other.Number != 1 {
		t.Errorf("other restaurant number = %d, want 1", other.Number)
	}
}

func TestStore_ListAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orderstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	t1 := fixtures.CreateTable(ctx, restID, 1)
	fixtures.CreateOrder(ctx, restID, 1, &t1, models.OrderPending)
	fixtures.CreateOrder(ctx, restID, 2, &t1, models.OrderPreparing)
	fixtures.CreateOrder(ctx, restID, 3, nil, models.OrderServed)
	fixtures.CreateOrder(ctx, restID, 4, nil, models.OrderPaid)
	fixtures.CreateOrder(ctx, restID, 5, nil, models.OrderCancelled)
	fixtures.CreateOrder(ctx, primitive.NewObjectID(), 1, nil, models.OrderPending)

	all, err := store.List(ctx, restID, orderstore.ListFilter{})
	if err != nil || len(all) != 5 {
		t.Fatalf("List = %d, %v", len(all), err)
	}
	active, _ := store.List(ctx, restID, orderstore.ListFilter{Statuses: models.ActiveOrderStatuses})
	if len(active) != 2 {
		t.Errorf("active = %d, want 2", len(active))
	}
	onTable, _ := store.List(ctx, restID, orderstore.ListFilter{TableID: &t1.ID, Limit: 1})
	if len(onTable) != 1 || onTable[0].TableNumber != 1 {
		t.Errorf("table filter = %+v", onTable)
	}

	if n, _ := store.CountActive(ctx, restID); n != 2 {
		t.Errorf("CountActive = %d, want 2", n)
	}
	if n, _ := store.CountUnsettled(ctx, restID); n != 3 {
		t.Errorf("CountUnsettled = %d, want 3", n)
	}
}

func TestStore_UpdateAndCancelledTable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orderstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	tbl := fixtures.CreateTable(ctx, restID, 3)
	a := fixtures.CreateOrder(ctx, restID, 1, &tbl, models.OrderPending)
	b := fixtures.CreateOrder(ctx, restID, 2, &tbl, models.OrderPending)

	cancelled := models.OrderCancelled
	before, after, err := store.Update(ctx, restID, a.ID, orderstore.Update{Status: &cancelled})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if before.Status != models.OrderPending || after.Status != models.OrderCancelled {
		t.Errorf("before/after = %s/%s", before.Status, after.Status)
	}
	if all, _ := store.AllCancelledForTable(ctx, restID, tbl.ID); all {
		t.Error("b is still pending")
	}
	store.Update(ctx, restID, b.ID, orderstore.Update{Status: &cancelled})
	if all, _ := store.AllCancelledForTable(ctx, restID, tbl.ID); !all {
		t.Error("every order of the table is cancelled")
	}

	if _, _, err := store.Update(ctx, primitive.NewObjectID(), a.ID, orderstore.Update{Status: &cancelled}); !errors.Is(err, orderstore.ErrNotFound) {
		t.Errorf("foreign restaurant update: got %v", err)
	}
	if n, err := store.Delete(ctx, a.ID); err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
	if _, err := store.GetByID(ctx, a.ID); !errors.Is(err, orderstore.ErrNotFound) {
		t.Errorf("deleted order: got %v", err)
	}
}

func TestStore_TopProductsAndCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orderstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	pinto := fixtures.CreateProduct(ctx, restID, 1, "Gallo pinto", "platos", 60)
	cacao := fixtures.CreateProduct(ctx, restID, 2, "Cacao", "bebidas", 30)
	line := func(p models.Product, qty int) models.OrderItem {
		return models.OrderItem{ProductID: p.ID, Name: p.Name, Quantity: qty, Price: p.Price}
	}

	paidNIO := fixtures.CreateOrder(ctx, restID, 1, nil, models.OrderPaid, line(pinto, 2), line(cacao, 1))
	paidUSD := fixtures.CreateOrder(ctx, restID, 2, nil, models.OrderPaid, line(cacao, 4))
	fixtures.CreateOrder(ctx, restID, 3, nil, models.OrderPending, line(pinto, 10))
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0001", OrderID: paidNIO.ID, Total: 150})
	fixtures.CreateInvoice(ctx, restID, testutil.InvoiceParams{Number: "0002", OrderID: paidUSD.ID, Total: 3.3, Currency: currency.USD, Rate: 36.5})

	since := time.Now().Add(-time.Hour)
	top, err := store.TopProducts(ctx, restID, since, 5)
	if err != nil {
		t.Fatalf("TopProducts: %v", err)
	}
	if len(top) != 2 || top[0].Name != "Cacao" || top[0].Units != 5 || top[1].Units != 2 {
		t.Errorf("top = %+v", top)
	}

	lines, err := store.PaidLinesByCategory(ctx, restID, since)
	if err != nil {
		t.Fatalf("PaidLinesByCategory: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("lines = %+v, want 3", lines)
	}
	var usd int
	for _, l := range lines {
		if l.HistoricalCurrency == string(currency.USD) {
			usd++
			if l.Category != "bebidas" || l.Amount != 120 || l.HistoricalRate != 36.5 {
				t.Errorf("usd line = %+v", l)
			}
		}
	}
	if usd != 1 {
		t.Errorf("usd lines = %d, want 1", usd)
	}
}
