// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/seq"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrDuplicateNumber = errors.New("an order with this number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("orders")}
}

// Create assigns the next order number for the restaurant and inserts o.
func (s *Store) Create(ctx context.Context, o models.Order) (models.Order, error) {
	n, err := seq.Next(ctx, s.c, bson.M{"restaurant_id": o.RestaurantID}, "number")
	if err != nil {
		return models.Order{}, err
	}
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.Number = n
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	if o.OrderedAt.IsZero() {
		o.OrderedAt = now
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, o); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Order{}, ErrDuplicateNumber
		}
		return models.Order{}, err
	}
	return o, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	return o, err
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	Statuses []string
	TableID  *primitive.ObjectID
	Limit    int64
}

// List returns the restaurant's orders, newest first.
func (s *Store) List(ctx context.Context, restaurantID primitive.ObjectID, f ListFilter) ([]models.Order, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.TableID != nil {
		filter["table_id"] = *f.TableID
	}
	opts := options.Find().SetSort(bson.D{{Key: "ordered_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActive counts orders the kitchen still has to act on.
func (s *Store) CountActive(ctx context.Context, restaurantID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"restaurant_id": restaurantID,
		"status":        bson.M{"$in": models.ActiveOrderStatuses},
	})
}

// CountUnsettled counts orders that are neither paid nor cancelled.
func (s *Store) CountUnsettled(ctx context.Context, restaurantID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"restaurant_id": restaurantID,
		"status":        bson.M{"$nin": bson.A{models.OrderPaid, models.OrderCancelled}},
	})
}

// AllCancelledForTable reports whether every order recorded for the table
// is cancelled.
func (s *Store) AllCancelledForTable(ctx context.Context, restaurantID, tableID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"restaurant_id": restaurantID,
		"table_id":      tableID,
		"status":        bson.M{"$ne": models.OrderCancelled},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Update holds the mutable order fields. Nil fields are left alone.
type Update struct {
	TableID     *primitive.ObjectID
	TableNumber *int
	Items       *[]models.OrderItem
	Total       *float64
	Status      *string
}

// Update applies upd to the restaurant's order and returns it before and
// after the change.
func (s *Store) Update(ctx context.Context, restaurantID, id primitive.ObjectID, upd Update) (before, after models.Order, err error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.TableID != nil {
		set["table_id"] = *upd.TableID
	}
	if upd.TableNumber != nil {
		set["table_number"] = *upd.TableNumber
	}
	if upd.Items != nil {
		set["items"] = *upd.Items
	}
	if upd.Total != nil {
		set["total"] = *upd.Total
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "restaurant_id": restaurantID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return before, after, ErrNotFound
	}
	if err != nil {
		return before, after, err
	}
	after, err = s.GetByID(ctx, id)
	return before, after, err
}

// Delete removes an order by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ProductUnits is one row of the best-sellers ranking.
type ProductUnits struct {
	Name  string `bson:"_id" json:"name"`
	Units int64  `bson:"units" json:"units"`
}

// TopProducts ranks products by units sold in paid orders since the given time.
func (s *Store) TopProducts(ctx context.Context, restaurantID primitive.ObjectID, since time.Time, limit int64) ([]ProductUnits, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"restaurant_id": restaurantID,
			"status":        models.OrderPaid,
			"ordered_at":    bson.M{"$gte": since},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$items.name",
			"units": bson.M{"$sum": "$items.quantity"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "units", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []ProductUnits{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryLine is one paid order line with the category of its product and
// the frozen currency regime of the invoice that settled the order. Orders
// without an invoice carry an empty currency.
type CategoryLine struct {
	Category           string  `bson:"category"`
	Amount             float64 `bson:"amount"`
	HistoricalCurrency string  `bson:"historical_currency"`
	HistoricalRate     float64 `bson:"historical_rate"`
}

// PaidLinesByCategory returns every line of the restaurant's paid orders
// since the given time, joined to its product category and invoice regime.
func (s *Store) PaidLinesByCategory(ctx context.Context, restaurantID primitive.ObjectID, since time.Time) ([]CategoryLine, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"restaurant_id": restaurantID,
			"status":        models.OrderPaid,
			"ordered_at":    bson.M{"$gte": since},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "invoices",
			"localField":   "_id",
			"foreignField": "order_id",
			"as":           "invoice",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$invoice", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "items.product_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":                 0,
			"category":            bson.M{"$ifNull": bson.A{"$product.category", ""}},
			"amount":              bson.M{"$multiply": bson.A{"$items.price", "$items.quantity"}},
			"historical_currency": bson.M{"$ifNull": bson.A{"$invoice.historical_currency", ""}},
			"historical_rate":     bson.M{"$ifNull": bson.A{"$invoice.historical_rate", 0}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []CategoryLine{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
