// internal/app/store/employees/employeestore.go
package employeestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/normalize"
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
	ErrNotFound       = errors.New("employee not found")
	ErrDuplicateEmail = errors.New("an employee with this email already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("employees")}
}

func (s *Store) Create(ctx context.Context, e models.Employee) (models.Employee, error) {
	n, err := seq.Next(ctx, s.c, bson.M{"restaurant_id": e.RestaurantID}, "number")
	if err != nil {
		return models.Employee{}, err
	}
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.Number = n
	e.FullName = normalize.Name(e.FullName)
	e.FullNameCI = text.Fold(e.FullName)
	e.Email = normalize.Email(e.Email)
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Employee{}, ErrDuplicateEmail
		}
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Employee, error) {
	var e models.Employee
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Employee{}, ErrNotFound
	}
	return e, err
}

// GetByUserID returns the employee record linked to a login account.
func (s *Store) GetByUserID(ctx context.Context, restaurantID, userID primitive.ObjectID) (models.Employee, error) {
	var e models.Employee
	err := s.c.FindOne(ctx, bson.M{"restaurant_id": restaurantID, "user_id": userID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Employee, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"restaurant_id": restaurantID},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Employee{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the mutable employee fields. Nil fields are left alone.
type Update struct {
	FullName *string
	Phone    *string
	Email    *string
	RoleID   *primitive.ObjectID
	UserID   *primitive.ObjectID
	Active   *bool
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Employee, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.RoleID != nil {
		set["role_id"] = *upd.RoleID
	}
	if upd.UserID != nil {
		set["user_id"] = *upd.UserID
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	var out models.Employee
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Employee{}, ErrNotFound
	case wafflemongo.IsDup(err):
		return models.Employee{}, ErrDuplicateEmail
	}
	return out, err
}

// Delete removes an employee by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
