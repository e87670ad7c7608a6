// internal/app/store/reservations/reservationstore.go
package reservationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("reservation not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reservations")}
}

func (s *Store) Create(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	if r.Status == "" {
		r.Status = models.ReservationPending
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Reservation{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, restaurantID, id primitive.ObjectID) (models.Reservation, error) {
	var r models.Reservation
	err := s.c.FindOne(ctx, bson.M{"_id": id, "restaurant_id": restaurantID}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reservation{}, ErrNotFound
	}
	return r, err
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	Date    string // YYYY-MM-DD
	TableID *primitive.ObjectID
}

// List returns the restaurant's reservations ordered by date then time.
func (s *Store) List(ctx context.Context, restaurantID primitive.ObjectID, f ListFilter) ([]models.Reservation, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.TableID != nil {
		filter["table_id"] = *f.TableID
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Reservation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the mutable reservation fields. Nil fields are left alone.
type Update struct {
	TableID      *primitive.ObjectID
	Date         *string
	Time         *string
	CustomerName *string
	Phone        *string
	Status       *string
}

func (s *Store) Update(ctx context.Context, restaurantID, id primitive.ObjectID, upd Update) (models.Reservation, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.TableID != nil {
		set["table_id"] = *upd.TableID
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Time != nil {
		set["time"] = *upd.Time
	}
	if upd.CustomerName != nil {
		set["customer_name"] = *upd.CustomerName
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	var out models.Reservation
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "restaurant_id": restaurantID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reservation{}, ErrNotFound
	}
	return out, err
}

// Delete removes the restaurant's reservation. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, restaurantID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "restaurant_id": restaurantID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
