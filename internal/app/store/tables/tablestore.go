// internal/app/store/tables/tablestore.go
package tablestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("table not found")
	ErrDuplicateNumber = errors.New("a table with this number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tables")}
}

func (s *Store) Create(ctx context.Context, t models.Table) (models.Table, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	if t.Status == "" {
		t.Status = models.TableFree
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Table{}, ErrDuplicateNumber
		}
		return models.Table{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Table, error) {
	var t models.Table
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Table{}, ErrNotFound
	}
	return t, err
}

func (s *Store) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Table, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"restaurant_id": restaurantID},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Table{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByStatus counts the restaurant's tables in the given status.
func (s *Store) CountByStatus(ctx context.Context, restaurantID primitive.ObjectID, status string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"restaurant_id": restaurantID, "status": status})
}

// Update holds the mutable table fields. Nil fields are left alone.
type Update struct {
	Number   *int
	Capacity *int
	Status   *string
}

// Update applies upd and returns the document as it was before and after
// the change, so callers can react to status transitions.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (before, after models.Table, err error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Number != nil {
		set["number"] = *upd.Number
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
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

// SetStatus changes only the status of a table.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a table by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
