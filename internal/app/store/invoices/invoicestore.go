// internal/app/store/invoices/invoicestore.go
package invoicestore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/seq"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NumberWidth is the zero-padded width of invoice numbers.
const NumberWidth = 4

var (
	ErrNotFound        = errors.New("invoice not found")
	ErrDuplicateNumber = errors.New("an invoice with this number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invoices")}
}

// NextNumber returns the next invoice number for the restaurant, e.g. "0043".
func (s *Store) NextNumber(ctx context.Context, restaurantID primitive.ObjectID) (string, error) {
	n, err := seq.NextFromString(ctx, s.c, bson.M{"restaurant_id": restaurantID}, "number")
	if err != nil {
		return "", err
	}
	return seq.Pad(n, NumberWidth), nil
}

// Create inserts inv as given. Number and the historical fields must already
// be set. A clash on (restaurant_id, number) returns ErrDuplicateNumber.
func (s *Store) Create(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	now := time.Now().UTC()
	inv.ID = primitive.NewObjectID()
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = now
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Invoice{}, ErrDuplicateNumber
		}
		return models.Invoice{}, err
	}
	return inv, nil
}

func (s *Store) GetByID(ctx context.Context, restaurantID, id primitive.ObjectID) (models.Invoice, error) {
	var inv models.Invoice
	err := s.c.FindOne(ctx, bson.M{"_id": id, "restaurant_id": restaurantID}).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Invoice{}, ErrNotFound
	}
	return inv, err
}

// List returns the restaurant's invoices, newest first.
func (s *Store) List(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Invoice, error) {
	return s.find(ctx, bson.M{"restaurant_id": restaurantID})
}

// Between returns the restaurant's invoices issued in [from, to], newest
// first. A zero to leaves the range open-ended.
func (s *Store) Between(ctx context.Context, restaurantID primitive.ObjectID, from, to time.Time) ([]models.Invoice, error) {
	return s.find(ctx, bson.M{"restaurant_id": restaurantID, "issued_at": rangeFilter(from, to)})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Invoice, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "issued_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Invoice{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the administratively editable invoice fields. The number,
// restaurant and historical currency/rate cannot be changed.
type Update struct {
	PaymentMethod *string
	Subtotal      *float64
	Tip           *float64
	TipPercentage *float64
	Total         *float64
	AmountPaid    *float64
	Change        *float64
	CustomerName  *string
	WaiterID      *primitive.ObjectID
	IssuedAt      *time.Time
}

func (s *Store) Update(ctx context.Context, restaurantID, id primitive.ObjectID, upd Update) (models.Invoice, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.PaymentMethod != nil {
		set["payment_method"] = *upd.PaymentMethod
	}
	if upd.Subtotal != nil {
		set["subtotal"] = *upd.Subtotal
	}
	if upd.Tip != nil {
		set["tip"] = *upd.Tip
	}
	if upd.TipPercentage != nil {
		set["tip_percentage"] = *upd.TipPercentage
	}
	if upd.Total != nil {
		set["total"] = *upd.Total
	}
	if upd.AmountPaid != nil {
		set["amount_received"] = *upd.AmountPaid
	}
	if upd.Change != nil {
		set["change"] = *upd.Change
	}
	if upd.CustomerName != nil {
		set["customer_name"] = *upd.CustomerName
	}
	if upd.WaiterID != nil {
		set["waiter_id"] = *upd.WaiterID
	}
	if upd.IssuedAt != nil {
		set["issued_at"] = upd.IssuedAt.UTC()
	}
	var out models.Invoice
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "restaurant_id": restaurantID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Invoice{}, ErrNotFound
	}
	return out, err
}

// Delete removes the restaurant's invoice. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, restaurantID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "restaurant_id": restaurantID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Bucket is the sum of one cashier's invoices sharing a payment method and
// a currency regime.
type Bucket struct {
	PaymentMethod      string  `bson:"payment_method"`
	HistoricalCurrency string  `bson:"historical_currency"`
	HistoricalRate     float64 `bson:"historical_rate"`
	Total              float64 `bson:"total"`
	Count              int64   `bson:"count"`
}

// SumForCashier totals the cashier's invoices at the restaurant issued in
// [from, to], grouped by payment method and currency regime. A zero to
// leaves the range open-ended.
func (s *Store) SumForCashier(ctx context.Context, restaurantID, cashierID primitive.ObjectID, from, to time.Time) ([]Bucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"restaurant_id": restaurantID,
			"cashier_id":    cashierID,
			"issued_at":     rangeFilter(from, to),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"payment_method":      "$payment_method",
				"historical_currency": "$historical_currency",
				"historical_rate":     "$historical_rate",
			},
			"total": bson.M{"$sum": "$total"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":                 0,
			"payment_method":      "$_id.payment_method",
			"historical_currency": "$_id.historical_currency",
			"historical_rate":     "$_id.historical_rate",
			"total":               1,
			"count":               1,
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Bucket{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SalesRow is one invoice joined with its order, waiter and cashier.
type SalesRow struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	Number             string             `bson:"number" json:"number"`
	IssuedAt           time.Time          `bson:"issued_at" json:"issued_at"`
	CustomerName       string             `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	PaymentMethod      string             `bson:"payment_method" json:"payment_method"`
	Subtotal           float64            `bson:"subtotal" json:"subtotal"`
	Tip                float64            `bson:"tip" json:"tip"`
	Tax                float64            `bson:"tax" json:"tax"`
	Total              float64            `bson:"total" json:"total"`
	AmountPaid         float64            `bson:"amount_received" json:"amount_received"`
	Change             float64            `bson:"change" json:"change"`
	HistoricalCurrency string             `bson:"historical_currency" json:"historical_currency"`
	HistoricalRate     float64            `bson:"historical_rate" json:"historical_rate"`
	Waiter             string             `bson:"waiter,omitempty" json:"waiter,omitempty"`
	Cashier            string             `bson:"cashier,omitempty" json:"cashier,omitempty"`
	TableNumber        int                `bson:"table_number,omitempty" json:"table_number,omitempty"`
	Items              []models.OrderItem `bson:"items,omitempty" json:"items,omitempty"`
}

// SalesFilter narrows SalesRows. Zero values mean "any".
type SalesFilter struct {
	From         time.Time
	To           time.Time
	EmployeeName string // case-insensitive match on waiter or cashier name
	TableNumber  int
}

// SalesRows returns the restaurant's invoices in the filter's range joined
// with order, waiter and cashier, newest first.
func (s *Store) SalesRows(ctx context.Context, restaurantID primitive.ObjectID, f SalesFilter) ([]SalesRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"restaurant_id": restaurantID,
			"issued_at":     rangeFilter(f.From, f.To),
		}}},
		{{Key: "$lookup", Value: bson.M{"from": "orders", "localField": "order_id", "foreignField": "_id", "as": "order"}}},
		{{Key: "$unwind", Value: bson.M{"path": "$order", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{"from": "employees", "localField": "waiter_id", "foreignField": "_id", "as": "waiter"}}},
		{{Key: "$unwind", Value: bson.M{"path": "$waiter", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{"from": "users", "localField": "cashier_id", "foreignField": "_id", "as": "cashier"}}},
		{{Key: "$unwind", Value: bson.M{"path": "$cashier", "preserveNullAndEmptyArrays": true}}},
	}
	if f.TableNumber > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"order.table_number": f.TableNumber}}})
	}
	if f.EmployeeName != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.EmployeeName), Options: "i"}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"waiter.full_name": re},
			bson.M{"cashier.username": re},
		}}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "issued_at", Value: -1}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"number":              1,
			"issued_at":           1,
			"customer_name":       1,
			"payment_method":      1,
			"subtotal":            1,
			"tip":                 1,
			"total":               1,
			"amount_received":     1,
			"change":              1,
			"historical_currency": 1,
			"historical_rate":     1,
			"tax":                 bson.M{"$subtract": bson.A{"$total", bson.M{"$add": bson.A{"$subtotal", "$tip"}}}},
			"waiter":              "$waiter.full_name",
			"cashier":             "$cashier.username",
			"table_number":        "$order.table_number",
			"items":               "$order.items",
		}}},
	)
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []SalesRow{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HourCount is the number of invoices issued in one hour of the day.
type HourCount struct {
	Hour  int   `bson:"_id" json:"hour"`
	Count int64 `bson:"count" json:"count"`
}

// PeakHours ranks the hours of [from, to] by invoice count, evaluated in loc.
func (s *Store) PeakHours(ctx context.Context, restaurantID primitive.ObjectID, from, to time.Time, loc *time.Location, limit int64) ([]HourCount, error) {
	tz := "UTC"
	if loc != nil && loc != time.Local {
		tz = loc.String()
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"restaurant_id": restaurantID,
			"issued_at":     rangeFilter(from, to),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": bson.M{"date": "$issued_at", "timezone": tz}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []HourCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func rangeFilter(from, to time.Time) bson.M {
	r := bson.M{"$gte": from.UTC()}
	if !to.IsZero() {
		r["$lte"] = to.UTC()
	}
	return r
}
