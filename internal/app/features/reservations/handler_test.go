package reservations_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/foodgestor/internal/app/features/reservations"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestReservations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	notifier, bus := testutil.NewNotifier(db)
	h := reservations.NewHandler(db, notifier, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	tbl := fixtures.CreateTable(ctx, restID, 9)
	other := fixtures.CreateTable(ctx, restID, 10)
	foreign := fixtures.CreateTable(ctx, primitive.NewObjectID(), 9)
	host := testutil.WaiterUser(restID)

	create := func(body map[string]any) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/api/reservations", body), host))
		return rec
	}

	rec := create(map[string]any{
		"table_id":      tbl.ID.Hex(),
		"date":          "2026-10-20",
		"time":          "19:30",
		"customer_name": "Familia Pérez",
		"status":        "confirmed",
	})
	rec.AssertStatus(t, http.StatusCreated)
	var res models.Reservation
	rec.DecodeJSON(t, &res)
	if res.Status != models.ReservationPending {
		t.Errorf("status = %q, new reservations start pending", res.Status)
	}
	if events := bus.Events(); len(events) != 1 || events[0].Data.Message != "New reservation at Table #9 for 19:30." {
		t.Errorf("unexpected events: %+v", events)
	}

	create(map[string]any{"table_id": tbl.ID.Hex(), "date": "20/10/2026", "time": "19:30", "customer_name": "X"}).
		AssertStatus(t, http.StatusBadRequest)
	create(map[string]any{"table_id": tbl.ID.Hex(), "date": "2026-10-20", "time": "25:00", "customer_name": "X"}).
		AssertStatus(t, http.StatusBadRequest)
	create(map[string]any{"table_id": foreign.ID.Hex(), "date": "2026-10-20", "time": "19:00", "customer_name": "X"}).
		AssertStatus(t, http.StatusBadRequest)

	create(map[string]any{"table_id": other.ID.Hex(), "date": "2026-10-21", "time": "12:00", "customer_name": "Ruiz"}).
		AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/reservations?date=2026-10-20", host))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Reservation
	rec.DecodeJSON(t, &list)
	if len(list) != 1 || list[0].ID != res.ID {
		t.Errorf("date filter: %+v", list)
	}

	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/", map[string]any{"status": "confirmed", "table_id": other.ID.Hex()}), host)
	rec = testutil.NewRecorder()
	h.HandleEdit(rec, testutil.WithChiURLParam(req, "id", res.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &res)
	if res.Status != models.ReservationConfirmed || res.TableID != other.ID {
		t.Errorf("edit not applied: %+v", res)
	}

	// another restaurant cannot touch it
	req = testutil.NewAuthenticatedRequest("DELETE", "/", testutil.WaiterUser(primitive.NewObjectID()))
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(req, "id", res.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewAuthenticatedRequest("DELETE", "/", host)
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(req, "id", res.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
}
