// internal/app/store/roles/rolestore.go
package rolestore

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
	ErrNotFound      = errors.New("role not found")
	ErrDuplicateName = errors.New("a role with this name already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roles")}
}

func (s *Store) Create(ctx context.Context, r models.Role) (models.Role, error) {
	n, err := seq.Next(ctx, s.c, bson.M{"restaurant_id": r.RestaurantID}, "number")
	if err != nil {
		return models.Role{}, err
	}
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.Number = n
	r.NameCI = text.Fold(r.Name)
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Role{}, ErrDuplicateName
		}
		return models.Role{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	var r models.Role
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Role{}, ErrNotFound
	}
	return r, err
}

func (s *Store) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Role, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"restaurant_id": restaurantID},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Role{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the mutable role fields. Nil fields are left alone.
type Update struct {
	Name   *string
	Active *bool
	Access *models.Access
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Role, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	if upd.Access != nil {
		set["access"] = *upd.Access
	}
	var out models.Role
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Role{}, ErrNotFound
	case wafflemongo.IsDup(err):
		return models.Role{}, ErrDuplicateName
	}
	return out, err
}

// Delete removes a role by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
