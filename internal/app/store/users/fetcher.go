package userstore

import (
	"context"

	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
// It fetches the user and the access map of its role from MongoDB.
type Fetcher struct {
	users *mongo.Collection
	roles *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users: db.Collection("users"),
		roles: db.Collection("roles"),
	}
}

// FetchUser retrieves a user by ID and returns nil if the user is not found,
// inactive, or if any error occurs. This implements auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":           1,
		"restaurant_id": 1,
		"username":      1,
		"email":         1,
		"role_id":       1,
		"active":        1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}
	if !u.Active {
		return nil
	}

	su := &auth.SessionUser{
		ID:           u.ID.Hex(),
		RestaurantID: u.RestaurantID.Hex(),
		Username:     u.Username,
		Email:        u.Email,
		Admin:        u.IsAdmin(),
	}
	if u.RoleID != nil {
		// A missing or inactive role leaves the user with no access.
		var role models.Role
		roleProj := options.FindOne().SetProjection(bson.M{"access": 1, "active": 1})
		if err := f.roles.FindOne(ctx, bson.M{"_id": *u.RoleID}, roleProj).Decode(&role); err == nil && role.Active {
			su.Access = role.Access
		}
	}
	return su
}

// AccessFor returns the access map of roleID, or an empty map when the role
// is missing or inactive. Admins (nil roleID) get every area.
func (f *Fetcher) AccessFor(ctx context.Context, roleID *primitive.ObjectID) models.Access {
	if roleID == nil {
		return models.Access{Orders: true, Kitchen: true, Cash: true, Reports: true}
	}
	var role models.Role
	if err := f.roles.FindOne(ctx, bson.M{"_id": *roleID}).Decode(&role); err != nil || !role.Active {
		return models.Access{}
	}
	return role.Access
}
