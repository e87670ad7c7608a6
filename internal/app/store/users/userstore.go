// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Identifier: what a person types to log in, either username or email

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/normalize"
	"github.com/dalemusser/foodgestor/internal/app/system/seq"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrDuplicateUser = errors.New("a user with this email or username already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts u with a fresh ID and the next user number for its
// restaurant. Username and email are stored normalized.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	n, err := seq.Next(ctx, s.c, bson.M{"restaurant_id": u.RestaurantID}, "number")
	if err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Number = n
	u.Username = normalize.Username(u.Username)
	u.Email = normalize.Email(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// FindByIdentifier looks a user up by email or username. When restaurantID
// is non-nil the search is limited to that restaurant.
func (s *Store) FindByIdentifier(ctx context.Context, identifier string, restaurantID *primitive.ObjectID) (models.User, error) {
	id := normalize.Username(identifier)
	filter := bson.M{"$or": bson.A{
		bson.M{"email": id},
		bson.M{"username": id},
	}}
	if restaurantID != nil {
		filter["restaurant_id"] = *restaurantID
	}
	var u models.User
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// maxSharedEmail caps how many accounts one address can reach.
const maxSharedEmail = 20

// ListByEmail returns every user with the given email. Email is unique
// only within a restaurant, so several restaurants may share one address;
// restaurantID narrows the search to one of them.
func (s *Store) ListByEmail(ctx context.Context, email string, restaurantID *primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{"email": normalize.Email(email)}
	if restaurantID != nil {
		filter["restaurant_id"] = *restaurantID
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "restaurant_id", Value: 1}}).
		SetLimit(maxSharedEmail))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IdentifierTaken reports whether username or email is already used by
// another user of the restaurant. excludeID may be zero.
func (s *Store) IdentifierTaken(ctx context.Context, restaurantID primitive.ObjectID, username, email string, excludeID primitive.ObjectID) (bool, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": normalize.Username(username)})
	}
	if email != "" {
		or = append(or, bson.M{"email": normalize.Email(email)})
	}
	if len(or) == 0 {
		return false, nil
	}
	filter := bson.M{"restaurant_id": restaurantID, "$or": or}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"restaurant_id": restaurantID},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDs returns the users among ids that exist. Order is unspecified.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	out := []models.User{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByRestaurant returns how many users the restaurant has.
func (s *Store) CountByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"restaurant_id": restaurantID})
}

// Update holds the mutable user fields. Nil fields are left alone.
// ClearRole removes the role, turning the user into an administrator.
type Update struct {
	Username     *string
	Email        *string
	PasswordHash *string
	RoleID       *primitive.ObjectID
	ClearRole    bool
	Active       *bool
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Username != nil {
		set["username"] = normalize.Username(*upd.Username)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.RoleID != nil {
		set["role_id"] = *upd.RoleID
	} else if upd.ClearRole {
		unset["role_id"] = ""
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	var out models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.User{}, ErrNotFound
	case wafflemongo.IsDup(err):
		return models.User{}, ErrDuplicateUser
	}
	return out, err
}

// SetResetCode stores a password-reset code that is valid until expiry.
func (s *Store) SetResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"reset_code":   code,
		"reset_expiry": expiry.UTC(),
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword replaces the password of the user owning email when code
// matches and has not expired, and clears the code. Each account sharing an
// address holds its own code, so the code picks the account; restaurantID
// may narrow it further. It returns ErrNotFound when no user matches.
func (s *Store) ResetPassword(ctx context.Context, email string, restaurantID *primitive.ObjectID, code, passwordHash string, now time.Time) (models.User, error) {
	filter := bson.M{
		"email":        normalize.Email(email),
		"reset_code":   code,
		"reset_expiry": bson.M{"$gt": now.UTC()},
	}
	if restaurantID != nil {
		filter["restaurant_id"] = *restaurantID
	}
	var out models.User
	err := s.c.FindOneAndUpdate(ctx,
		filter,
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash, "updated_at": now.UTC()},
			"$unset": bson.M{"reset_code": "", "reset_expiry": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return out, err
}

// ClearExpiredResetCodes removes reset codes whose expiry is before now.
func (s *Store) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"reset_expiry": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{"reset_code": "", "reset_expiry": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
