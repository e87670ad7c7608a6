package employees_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/foodgestor/internal/app/features/employees"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := employees.NewHandler(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	admin := testutil.AdminUser(restID)
	u := fixtures.CreateUser(ctx, restID, "ana", "ana@example.com", nil)
	foreignRole := fixtures.CreateRole(ctx, primitive.NewObjectID(), "Caja", models.Access{Cash: true})

	create := func(body map[string]any) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/api/employees", body), admin))
		return rec
	}

	rec := create(map[string]any{"full_name": "Ana  López", "email": "Ana@Example.com", "user_id": u.ID.Hex()})
	rec.AssertStatus(t, http.StatusCreated)
	var e models.Employee
	rec.DecodeJSON(t, &e)
	if e.Email != "ana@example.com" || e.UserID == nil || *e.UserID != u.ID || !e.Active {
		t.Errorf("unexpected employee: %+v", e)
	}

	create(map[string]any{"full_name": "Otra Ana", "email": "ana@example.com"}).AssertStatus(t, http.StatusConflict)
	create(map[string]any{"email": "x@example.com"}).AssertStatus(t, http.StatusBadRequest)
	create(map[string]any{"full_name": "Luis", "email": "not-an-email"}).AssertStatus(t, http.StatusBadRequest)
	create(map[string]any{"full_name": "Luis", "email": "luis@example.com", "role_id": foreignRole.ID.Hex()}).
		AssertStatus(t, http.StatusBadRequest)
}

func TestHandleEditAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := employees.NewHandler(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restID := primitive.NewObjectID()
	admin := testutil.AdminUser(restID)
	e := fixtures.CreateEmployee(ctx, restID, "Pedro Ruiz", "pedro@example.com", nil)
	withID := func(req *http.Request) *http.Request { return testutil.WithChiURLParam(req, "id", e.ID.Hex()) }

	rec := testutil.NewRecorder()
	h.HandleEdit(rec, withID(testutil.WithUser(testutil.NewJSONRequest("PUT", "/", map[string]any{
		"phone":  "8888-1111",
		"active": false,
	}), admin)))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Employee
	rec.DecodeJSON(t, &got)
	if got.Phone != "8888-1111" || got.Active || got.FullName != "Pedro Ruiz" {
		t.Errorf("edit not applied: %+v", got)
	}

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.NewAuthenticatedRequest("DELETE", "/", testutil.AdminUser(primitive.NewObjectID()))))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.NewAuthenticatedRequest("DELETE", "/", admin)))
	rec.AssertStatus(t, http.StatusOK)
}
