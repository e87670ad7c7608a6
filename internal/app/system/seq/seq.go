// internal/app/system/seq/seq.go
package seq

// Business numbers (order number, invoice number, role number, ...) are
// assigned as max+1 within a restaurant. The unique index on
// (restaurant_id, <field>) is what actually prevents two writers from
// taking the same number; callers map the duplicate-key error to a
// conflict and do not retry.

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Next returns 1 + the largest integer value of field among documents
// matching filter, or 1 when none match.
func Next(ctx context.Context, c *mongo.Collection, filter bson.M, field string) (int, error) {
	return next(ctx, c, filter, "$"+field)
}

// NextFromString is Next for fields stored as numeric strings such as "0042".
// Values that do not parse are ignored.
func NextFromString(ctx context.Context, c *mongo.Collection, filter bson.M, field string) (int, error) {
	expr := bson.M{"$convert": bson.M{
		"input":   "$" + field,
		"to":      "int",
		"onError": 0,
		"onNull":  0,
	}}
	return next(ctx, c, filter, expr)
}

// Pad formats n with at least width digits.
func Pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func next(ctx context.Context, c *mongo.Collection, filter bson.M, expr interface{}) (int, error) {
	if filter == nil {
		filter = bson.M{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": nil, "max": bson.M{"$max": expr}}}},
	}
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Max int64 `bson:"max"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 1, nil
	}
	return int(rows[0].Max) + 1, nil
}
