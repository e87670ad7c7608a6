// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is reported and startup fails fast.
The unique indexes here are what enforce business-number, identifier and
open-register uniqueness; application pre-checks are advisory only.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"restaurants", ensureRestaurants},
		{"users", ensureUsers},
		{"roles", ensureRoles},
		{"employees", ensureEmployees},
		{"tables", ensureTables},
		{"products", ensureProducts},
		{"orders", ensureOrders},
		{"invoices", ensureInvoices},
		{"register_sessions", ensureRegisterSessions},
		{"reservations", ensureReservations},
		{"notifications", ensureNotifications},
		{"audit_events", ensureAuditEvents},
	}
	for _, set := range sets {
		if err := set.ensure(ctx, db); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.M `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// samePartial compares partial filter expressions by their printed form.
func samePartial(desired interface{}, existing bson.M) bool {
	if desired == nil {
		return len(existing) == 0
	}
	return fmt.Sprint(desired) == fmt.Sprint(existing)
}

// sameOptions reports whether an existing index can stand in for the desired one.
func sameOptions(m mongo.IndexModel, ex existingIndex) bool {
	var unique *bool
	var partial interface{}
	if m.Options != nil {
		unique = m.Options.Unique
		partial = m.Options.PartialFilterExpression
	}
	return sameBoolPtr(unique, ex.Unique) && samePartial(partial, ex.Partial)
}

// dupHint explains a failed unique index build with a query that finds the
// offending documents.
func dupHint(coll *mongo.Collection, name string, keys bson.D) string {
	fields := bson.M{}
	for _, kv := range keys {
		fields[kv.Key] = "$" + kv.Key
	}
	return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present). Example finder:\n"+
		"db.%s.aggregate([{ $group: { _id: %v, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])",
		coll.Name(), name, coll.Name(), fields)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			defer cur.Close(ctx)
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameOptions(m, ex) {
				// --- Name alignment: if the name differs, drop & recreate with the desired name.
				if desiredName != "" && ex.Name != desiredName {
					zap.L().Info("renaming index to align with desired name",
						zap.String("collection", coll.Name()),
						zap.String("from", ex.Name),
						zap.String("to", desiredName),
						zap.String("keys", desiredSig))

					if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
						zap.L().Warn("drop existing index (rename) failed",
							zap.String("collection", coll.Name()),
							zap.String("name", ex.Name),
							zap.Error(err))
						errs = append(errs, fmt.Sprintf("%s(%s): rename drop failed: %v", coll.Name(), desiredName, err))
						continue
					}
					if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
						zap.L().Warn("create index (rename) failed",
							zap.String("collection", coll.Name()),
							zap.String("name", desiredName),
							zap.Error(err))
						errs = append(errs, fmt.Sprintf("%s(%s): rename create failed: %v", coll.Name(), desiredName, err))
						continue
					}
					zap.L().Info("index renamed",
						zap.String("collection", coll.Name()),
						zap.String("name", desiredName),
						zap.String("keys", desiredSig),
						zap.String("took", time.Since(start).String()))
					continue
				}

				// Names aligned (or we don't care) → reuse
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Bool("unique", ex.Unique != nil && *ex.Unique),
					zap.String("took", time.Since(start).String()))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, dupHint(coll, desiredName, m.Keys.(bson.D)))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		if created, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				cur2, e2 := coll.Indexes().List(ctx)
				if e2 == nil {
					var match *existingIndex
					for cur2.Next(ctx) {
						var idx existingIndex
						if err := cur2.Decode(&idx); err != nil {
							zap.L().Warn("failed to decode existing index (post-conflict)",
								zap.String("collection", coll.Name()),
								zap.Error(err))
							continue
						}
						if keySig(idx.Key) == desiredSig {
							match = &idx
							break
						}
					}
					cur2.Close(ctx)
					if match != nil {
						if sameOptions(m, *match) {
							zap.L().Info("reusing existing index (post-conflict)",
								zap.String("collection", coll.Name()),
								zap.String("name", match.Name),
								zap.String("keys", desiredSig),
								zap.Bool("unique", match.Unique != nil && *match.Unique),
								zap.String("took", time.Since(start).String()))
							continue
						}
						if _, dropErr := coll.Indexes().DropOne(ctx, match.Name); dropErr != nil {
							zap.L().Warn("failed to drop conflicting index",
								zap.String("collection", coll.Name()),
								zap.String("name", match.Name),
								zap.Error(dropErr))
						}
						if _, e3 := coll.Indexes().CreateOne(ctx, m); e3 != nil {
							if isDuplicateKeyErr(e3) && desiredUnique != nil && *desiredUnique {
								errs = append(errs, dupHint(coll, desiredName, m.Keys.(bson.D)))
							} else {
								errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, e3))
							}
							continue
						}
						zap.L().Info("index dropped and recreated (post-conflict)",
							zap.String("collection", coll.Name()),
							zap.String("name", desiredName),
							zap.String("keys", desiredSig),
							zap.Bool("unique", desiredUnique != nil && *desiredUnique),
							zap.String("took", time.Since(start).String()))
						continue
					}
				}

				zap.L().Warn("index ensure failed",
					zap.String("collection", coll.Name()),
					zap.String("name", desiredName),
					zap.String("keys", desiredSig),
					zap.Bool("unique", desiredUnique != nil && *desiredUnique),
					zap.String("took", time.Since(start).String()),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				continue
			}

			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		} else {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureRestaurants(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("restaurants"), []mongo.IndexModel{
		// REST<n> login codes resolve through this
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_restaurants_number"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_restaurants_nameci__id"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Username and email are unique within a restaurant, not globally.
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_restaurant_username"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_restaurant_email"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_restaurant_number"),
		},
		// Login without a restaurant code searches across restaurants
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_users_username"),
		},
		// Reset-code cleanup job
		{
			Keys:    bson.D{{Key: "reset_expiry", Value: 1}},
			Options: options.Index().SetName("idx_users_reset_expiry").SetSparse(true),
		},
	})
}

func ensureRoles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("roles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_roles_restaurant_nameci"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_roles_restaurant_number"),
		},
	})
}

func ensureEmployees(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("employees"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_employees_email"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_employees_restaurant_number"),
		},
		// Order creation resolves the waiter from the login account
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_employees_restaurant_user"),
		},
	})
}

func ensureTables(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("tables"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tables_restaurant_number"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_tables_restaurant_status"),
		},
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("products"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_products_restaurant_number"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "category", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_products_restaurant_category_nameci"),
		},
	})
}

func ensureOrders(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("orders"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orders_restaurant_number"),
		},
		// Dashboards: active orders, newest first
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "status", Value: 1}, {Key: "ordered_at", Value: -1}},
			Options: options.Index().SetName("idx_orders_restaurant_status_orderedat"),
		},
		// Freeing a table checks every order on it
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "table_id", Value: 1}},
			Options: options.Index().SetName("idx_orders_restaurant_table"),
		},
	})
}

func ensureInvoices(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("invoices"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_invoices_restaurant_number"),
		},
		// Register pre-close/close aggregation
		{
			Keys: bson.D{
				{Key: "restaurant_id", Value: 1},
				{Key: "cashier_id", Value: 1},
				{Key: "issued_at", Value: 1},
			},
			Options: options.Index().SetName("idx_invoices_restaurant_cashier_issuedat"),
		},
		// Reports by date range
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "issued_at", Value: -1}},
			Options: options.Index().SetName("idx_invoices_restaurant_issuedat"),
		},
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("idx_invoices_order"),
		},
	})
}

func ensureRegisterSessions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("register_sessions"), []mongo.IndexModel{
		// At most one open session per (restaurant, cashier). Closed sessions
		// fall outside the partial filter and may repeat freely.
		{
			Keys: bson.D{
				{Key: "restaurant_id", Value: 1},
				{Key: "opening_cashier_id", Value: 1},
				{Key: "state", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"state": models.RegisterOpen}).
				SetName("uniq_register_sessions_open_per_cashier"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "opened_at", Value: -1}},
			Options: options.Index().SetName("idx_register_sessions_restaurant_openedat"),
		},
		// Stale-register job scans open sessions across restaurants
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "opened_at", Value: 1}},
			Options: options.Index().SetName("idx_register_sessions_state_openedat"),
		},
	})
}

func ensureReservations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reservations"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "restaurant_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().SetName("idx_reservations_restaurant_date_time"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "table_id", Value: 1}},
			Options: options.Index().SetName("idx_reservations_restaurant_table"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_restaurant_createdat"),
		},
		// Prune job
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_notifications_createdat"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_restaurant_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
