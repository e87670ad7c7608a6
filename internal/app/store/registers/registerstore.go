// internal/app/store/registers/registerstore.go
package registerstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("register session not found")
	// ErrAlreadyOpen is returned when the cashier already has an open
	// session at the restaurant. It is produced both by the partial unique
	// index on (restaurant_id, opening_cashier_id, state=open) and by callers
	// that pre-check with FindOpen.
	ErrAlreadyOpen = errors.New("cashier already has an open register")
	ErrNotOpen     = errors.New("register session is not open")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("register_sessions")}
}

// Insert stores a new open session.
func (s *Store) Insert(ctx context.Context, rs models.RegisterSession) (models.RegisterSession, error) {
	now := time.Now().UTC()
	rs.ID = primitive.NewObjectID()
	rs.State = models.RegisterOpen
	if rs.OpenedAt.IsZero() {
		rs.OpenedAt = now
	}
	rs.CreatedAt = now
	rs.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, rs); err != nil {
		if wafflemongo.IsDup(err) {
			return models.RegisterSession{}, ErrAlreadyOpen
		}
		return models.RegisterSession{}, err
	}
	return rs, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.RegisterSession, error) {
	var rs models.RegisterSession
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RegisterSession{}, ErrNotFound
	}
	return rs, err
}

// FindOpen returns the cashier's open session at the restaurant.
func (s *Store) FindOpen(ctx context.Context, restaurantID, cashierID primitive.ObjectID) (models.RegisterSession, error) {
	var rs models.RegisterSession
	err := s.c.FindOne(ctx, bson.M{
		"restaurant_id":      restaurantID,
		"opening_cashier_id": cashierID,
		"state":              models.RegisterOpen,
	}).Decode(&rs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RegisterSession{}, ErrNotFound
	}
	return rs, err
}

// HasOpen reports whether any session is open at the restaurant.
func (s *Store) HasOpen(ctx context.Context, restaurantID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"restaurant_id": restaurantID,
		"state":         models.RegisterOpen,
	}, options.Count().SetLimit(1))
	return n > 0, err
}

// CloseFields are written when a session transitions to closed.
type CloseFields struct {
	ClosedAt         time.Time
	ClosingCashierID primitive.ObjectID
	SystemCashSales  float64
	SystemCardSales  float64
	OtherIncome      float64
	CashOut          float64
	ExpectedCash     float64
	ActualCash       float64
	Difference       float64
	Deviation        string
	MixedCurrency    bool
	Notes            string
}

// Close transitions an open session to closed. The update is conditional
// on the session still being open; ErrNotOpen is returned otherwise.
func (s *Store) Close(ctx context.Context, id primitive.ObjectID, f CloseFields) (models.RegisterSession, error) {
	var out models.RegisterSession
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "state": models.RegisterOpen},
		bson.M{"$set": bson.M{
			"state":              models.RegisterClosed,
			"closed_at":          f.ClosedAt.UTC(),
			"closing_cashier_id": f.ClosingCashierID,
			"system_cash_sales":  f.SystemCashSales,
			"system_card_sales":  f.SystemCardSales,
			"other_income":       f.OtherIncome,
			"cash_out":           f.CashOut,
			"expected_cash":      f.ExpectedCash,
			"actual_cash":        f.ActualCash,
			"difference":         f.Difference,
			"deviation":          f.Deviation,
			"mixed_currency":     f.MixedCurrency,
			"notes":              f.Notes,
			"updated_at":         time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RegisterSession{}, ErrNotOpen
	}
	return out, err
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	From        time.Time
	To          time.Time
	CashierName string // case-insensitive substring
	State       string
}

// List returns the restaurant's sessions, most recently opened first.
func (s *Store) List(ctx context.Context, restaurantID primitive.ObjectID, f ListFilter) ([]models.RegisterSession, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	opened := bson.M{}
	if !f.From.IsZero() {
		opened["$gte"] = f.From.UTC()
	}
	if !f.To.IsZero() {
		opened["$lte"] = f.To.UTC()
	}
	if len(opened) > 0 {
		filter["opened_at"] = opened
	}
	if f.CashierName != "" {
		filter["cashier_name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.CashierName), Options: "i"}
	}
	if f.State != "" {
		filter["state"] = f.State
	}
	return s.find(ctx, filter)
}

// OpenedBefore returns open sessions, across all restaurants, that were
// opened before the cutoff.
func (s *Store) OpenedBefore(ctx context.Context, cutoff time.Time) ([]models.RegisterSession, error) {
	return s.find(ctx, bson.M{
		"state":     models.RegisterOpen,
		"opened_at": bson.M{"$lt": cutoff.UTC()},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.RegisterSession, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "opened_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.RegisterSession{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
