// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/foodgestor/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Money and currency regimes
	ensure("restaurants", restaurantsSchema())
	ensure("invoices", invoicesSchema())
	ensure("register_sessions", registerSessionsSchema())

	// Operations
	ensure("orders", ordersSchema())
	ensure("tables", tablesSchema())
	ensure("reservations", reservationsSchema())
	ensure("notifications", notificationsSchema())

	// People
	ensure("users", usersSchema())
	ensure("roles", nil)
	ensure("employees", nil)
	ensure("products", productsSchema())
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	currencyEnum = bson.M{"enum": bson.A{"USD", "NIO"}}
	money        = bson.M{"bsonType": "number"}
	nonBlank     = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
)

func enumOf(values []string) bson.M {
	a := make(bson.A, 0, len(values))
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func restaurantsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"number", "name", "settings"},
			"properties": bson.M{
				"number": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"name":   nonBlank,
				"settings": bson.M{
					"bsonType": "object",
					"required": bson.A{"currency", "exchange_rate"},
					"properties": bson.M{
						"currency":      currencyEnum,
						"exchange_rate": bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
					},
				},
			},
		},
	}
}

// Historical currency/rate are required on every invoice; they are the
// regime the sale was recorded under.
func invoicesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"restaurant_id", "number", "order_id", "payment_method", "total",
				"cashier_id", "issued_at", "historical_currency", "historical_rate",
			},
			"properties": bson.M{
				"restaurant_id":       bson.M{"bsonType": "objectId"},
				"number":              bson.M{"bsonType": "string", "pattern": "^[0-9]+$"},
				"order_id":            bson.M{"bsonType": "objectId"},
				"cashier_id":          bson.M{"bsonType": "objectId"},
				"payment_method":      enumOf(models.PaymentMethods),
				"total":               money,
				"subtotal":            money,
				"tip":                 money,
				"amount_received":     money,
				"issued_at":           bson.M{"bsonType": "date"},
				"historical_currency": currencyEnum,
				"historical_rate":     money,
			},
		},
	}
}

func registerSessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"restaurant_id", "opening_cashier_id", "opened_at", "opening_float",
				"state", "historical_currency", "historical_rate",
			},
			"properties": bson.M{
				"restaurant_id":       bson.M{"bsonType": "objectId"},
				"opening_cashier_id":  bson.M{"bsonType": "objectId"},
				"opened_at":           bson.M{"bsonType": "date"},
				"opening_float":       bson.M{"bsonType": "number", "minimum": 0},
				"state":               enumOf([]string{models.RegisterOpen, models.RegisterClosed}),
				"historical_currency": currencyEnum,
				"historical_rate":     money,
				"deviation":           enumOf([]string{"", models.DeviationNormal, models.DeviationWarning, models.DeviationCritical}),
			},
		},
	}
}

func ordersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"restaurant_id", "number", "items", "total", "status"},
			"properties": bson.M{
				"restaurant_id": bson.M{"bsonType": "objectId"},
				"number":        bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"items":         bson.M{"bsonType": "array", "minItems": 1},
				"total":         money,
				"status":        enumOf(models.OrderStatuses),
			},
		},
	}
}

func tablesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"restaurant_id", "number", "status"},
			"properties": bson.M{
				"restaurant_id": bson.M{"bsonType": "objectId"},
				"number":        bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"capacity":      bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"status":        enumOf([]string{models.TableFree, models.TableOccupied}),
			},
		},
	}
}

func reservationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"restaurant_id", "table_id", "date", "time", "customer_name", "status"},
			"properties": bson.M{
				"date":          bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"time":          bson.M{"bsonType": "string", "pattern": "^[0-9]{2}:[0-9]{2}$"},
				"customer_name": nonBlank,
				"status":        enumOf(models.ReservationStatuses),
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"restaurant_id", "message", "type"},
			"properties": bson.M{
				"message": nonBlank,
				"type":    enumOf([]string{models.NotifyOrder, models.NotifyTable, models.NotifyInventory, models.NotifyGeneral}),
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"restaurant_id", "username", "email", "password_hash"},
			"properties": bson.M{
				"username":      nonBlank,
				"email":         nonBlank,
				"password_hash": nonBlank,
			},
		},
	}
}

func productsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"restaurant_id", "name", "price"},
			"properties": bson.M{
				"name":  nonBlank,
				"price": bson.M{"bsonType": "number", "minimum": 0},
			},
		},
	}
}
