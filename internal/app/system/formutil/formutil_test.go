package formutil_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIDParam(t *testing.T) {
	id := primitive.NewObjectID()
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", id.Hex())
	got, err := formutil.IDParam(req, "id")
	if err != nil || got != id {
		t.Fatalf("IDParam = %v, %v", got, err)
	}

	req = testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "nope")
	if _, err := formutil.IDParam(req, "id"); !errors.Is(err, inputval.ErrInvalid) {
		t.Errorf("malformed id: got %v", err)
	}
}

func TestIntQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/?table=7&bad=x", nil)
	if n, ok := formutil.IntQuery(req, "table"); !ok || n != 7 {
		t.Errorf("table = %d, %v", n, ok)
	}
	if _, ok := formutil.IntQuery(req, "bad"); ok {
		t.Error("non-numeric value must not parse")
	}
	if _, ok := formutil.IntQuery(req, "missing"); ok {
		t.Error("missing value must not parse")
	}
}

func TestObjectIDQuery(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/?table_id="+id.Hex()+"&bad=zz", nil)

	got, err := formutil.ObjectIDQuery(req, "table_id")
	if err != nil || got == nil || *got != id {
		t.Errorf("table_id = %v, %v", got, err)
	}
	if got, err := formutil.ObjectIDQuery(req, "none"); err != nil || got != nil {
		t.Errorf("absent = %v, %v", got, err)
	}
	if _, err := formutil.ObjectIDQuery(req, "bad"); !errors.Is(err, inputval.ErrInvalid) {
		t.Errorf("malformed: got %v", err)
	}
}
