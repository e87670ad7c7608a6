package indexes_test

import (
	"testing"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/indexes"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	// Second call should also succeed (idempotent)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesUniqueIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"restaurants":       {"uniq_restaurants_number"},
		"users":             {"uniq_users_restaurant_username", "uniq_users_restaurant_email"},
		"roles":             {"uniq_roles_restaurant_nameci"},
		"employees":         {"uniq_employees_email"},
		"orders":            {"uniq_orders_restaurant_number"},
		"invoices":          {"uniq_invoices_restaurant_number", "idx_invoices_restaurant_cashier_issuedat"},
		"register_sessions": {"uniq_register_sessions_open_per_cashier"},
	}
	for coll, want := range expected {
		names := indexNames(t, db, coll)
		for _, name := range want {
			if !names[name] {
				t.Errorf("%s: expected index %q to exist", coll, name)
			}
		}
	}
}

func TestEnsureAll_OpenRegisterIsUniquePerCashier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	c := db.Collection("register_sessions")
	rest := primitive.NewObjectID()
	cashier := primitive.NewObjectID()
	doc := func(state string) bson.M {
		return bson.M{
			"_id":                primitive.NewObjectID(),
			"restaurant_id":      rest,
			"opening_cashier_id": cashier,
			"state":              state,
			"opened_at":          time.Now().UTC(),
		}
	}

	if _, err := c.InsertOne(ctx, doc("open")); err != nil {
		t.Fatalf("first open insert failed: %v", err)
	}
	if _, err := c.InsertOne(ctx, doc("open")); !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("second open insert: expected duplicate key error, got %v", err)
	}

	// Closed sessions are outside the partial filter.
	for i := 0; i < 2; i++ {
		if _, err := c.InsertOne(ctx, doc("closed")); err != nil {
			t.Fatalf("closed insert %d failed: %v", i, err)
		}
	}
}
