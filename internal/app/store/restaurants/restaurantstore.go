// internal/app/store/restaurants/restaurantstore.go
package restaurantstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/seq"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("restaurant not found")
	ErrDuplicateNumber = errors.New("a restaurant with this number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("restaurants")}
}

// Create inserts a restaurant. A zero Number is replaced with the next free
// number; zero-valued settings are replaced with the defaults.
func (s *Store) Create(ctx context.Context, r models.Restaurant) (models.Restaurant, error) {
	if r.Number == 0 {
		n, err := seq.Next(ctx, s.c, nil, "number")
		if err != nil {
			return models.Restaurant{}, err
		}
		r.Number = n
	}
	def := models.DefaultSettings()
	if !r.Settings.Currency.Valid() {
		r.Settings.Currency = def.Currency
	}
	if r.Settings.ExchangeRate <= 0 {
		r.Settings.ExchangeRate = def.ExchangeRate
	}
	if r.Settings.DefaultTax == 0 {
		r.Settings.DefaultTax = def.DefaultTax
	}
	if r.SelectedPositions == nil {
		r.SelectedPositions = []string{}
	}

	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.NameCI = text.Fold(r.Name)
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Restaurant{}, ErrDuplicateNumber
		}
		return models.Restaurant{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Restaurant, error) {
	var r models.Restaurant
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, ErrNotFound
	}
	return r, err
}

// GetByNumber resolves the numeric part of a REST<n> login code.
func (s *Store) GetByNumber(ctx context.Context, number int) (models.Restaurant, error) {
	var r models.Restaurant
	err := s.c.FindOne(ctx, bson.M{"number": number}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, ErrNotFound
	}
	return r, err
}

// Exists reports whether a restaurant with the given ID exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store) List(ctx context.Context) ([]models.Restaurant, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Restaurant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the mutable restaurant fields. Nil fields are left alone.
type Update struct {
	Name              *string
	Address           *string
	Phone             *string
	Tables            *int
	SelectedPositions *[]string
	Services          *models.Services
	DefaultTip        *float64
	DefaultTax        *float64
	Currency          *currency.Code
	ExchangeRate      *float64
}

// Update applies upd and returns the stored document after the change.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Restaurant, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Tables != nil {
		set["tables"] = *upd.Tables
	}
	if upd.SelectedPositions != nil {
		set["selected_positions"] = *upd.SelectedPositions
	}
	if upd.Services != nil {
		set["services"] = *upd.Services
	}
	if upd.DefaultTip != nil {
		set["settings.default_tip"] = *upd.DefaultTip
	}
	if upd.DefaultTax != nil {
		set["settings.default_tax"] = *upd.DefaultTax
	}
	if upd.Currency != nil {
		set["settings.currency"] = *upd.Currency
	}
	if upd.ExchangeRate != nil {
		set["settings.exchange_rate"] = *upd.ExchangeRate
	}

	var out models.Restaurant
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Restaurant{}, ErrNotFound
	}
	return out, err
}

// Delete removes a restaurant by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
