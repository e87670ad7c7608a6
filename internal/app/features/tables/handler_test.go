package tables_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/foodgestor/internal/app/features/tables"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := tables.NewHandler(db, nil, zap.NewNop())
	admin := testutil.AdminUser(primitive.NewObjectID())

	create := func(body map[string]any) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/api/tables", body), admin))
		return rec
	}

	rec := create(map[string]any{"number": 4, "capacity": 6})
	rec.AssertStatus(t, http.StatusCreated)
	var tbl models.Table
	rec.DecodeJSON(t, &tbl)
	if tbl.Status != models.TableFree || tbl.Capacity != 6 {
		t.Errorf("unexpected table: %+v", tbl)
	}

	create(map[string]any{"number": 4, "capacity": 2}).AssertStatus(t, http.StatusConflict)
	create(map[string]any{"number": 5}).AssertStatus(t, http.StatusBadRequest)
	create(map[string]any{"number": 6, "capacity": 2, "status": "broken"}).AssertStatus(t, http.StatusBadRequest)
}

func TestHandleEdit_FreeingPublishes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	notifier, bus := testutil.NewNotifier(db)
	h := tables.NewHandler(db, notifier, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	tbl := fixtures.CreateTable(ctx, restID, 3)
	waiter := testutil.WaiterUser(restID)

	setStatus := func(status string) {
		t.Helper()
		req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/", map[string]any{"status": status}), waiter)
		rec := testutil.NewRecorder()
		h.HandleEdit(rec, testutil.WithChiURLParam(req, "id", tbl.ID.Hex()))
		rec.AssertStatus(t, http.StatusOK)
	}

	setStatus(models.TableOccupied)
	if n := len(bus.Events()); n != 0 {
		t.Fatalf("seating must not publish, got %d events", n)
	}
	setStatus(models.TableFree)
	events := bus.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Data.Type != models.NotifyTable || events[0].Data.Message != "Table #3 has been freed." {
		t.Errorf("unexpected notification: %+v", events[0].Data)
	}
	// free to free is not a transition
	setStatus(models.TableFree)
	if n := len(bus.Events()); n != 1 {
		t.Errorf("got %d events, want 1", n)
	}
}

func TestHandleDelete_OtherRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := tables.NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tbl := fixtures.CreateTable(ctx, primitive.NewObjectID(), 1)
	req := testutil.NewAuthenticatedRequest("DELETE", "/", testutil.AdminUser(primitive.NewObjectID()))
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(req, "id", tbl.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}
