// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/seq"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrDuplicateNumber = errors.New("a product with this number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if p.Number == 0 {
		n, err := seq.Next(ctx, s.c, bson.M{"restaurant_id": p.RestaurantID}, "number")
		if err != nil {
			return models.Product{}, err
		}
		p.Number = n
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Product{}, ErrDuplicateNumber
		}
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

// ListFilter narrows ListByRestaurant. Zero values mean "any".
type ListFilter struct {
	Category      string
	AvailableOnly bool
}

func (s *Store) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID, f ListFilter) ([]models.Product, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.AvailableOnly {
		filter["available"] = true
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name_ci", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the mutable product fields. Nil fields are left alone.
type Update struct {
	Number      *int
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Available   *bool
	ImageURL    *string
}

// Update applies upd and returns the product before and after the change.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (before, after models.Product, err error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Number != nil {
		set["number"] = *upd.Number
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Available != nil {
		set["available"] = *upd.Available
	}
	if upd.ImageURL != nil {
		set["image_url"] = *upd.ImageURL
	}
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return before, after, ErrNotFound
	case wafflemongo.IsDup(err):
		return before, after, ErrDuplicateNumber
	case err != nil:
		return before, after, err
	}
	after, err = s.GetByID(ctx, id)
	return before, after, err
}

// Delete removes a product by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
