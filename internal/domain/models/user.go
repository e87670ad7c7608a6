// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Identifier: what a person types to log in, either username or email

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a login account scoped to one restaurant. A user without a role
// is a restaurant administrator.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID  `bson:"restaurant_id" json:"restaurant_id"`
	Number       int                 `bson:"number" json:"number"`
	Username     string              `bson:"username" json:"username"` // lowercase
	Email        string              `bson:"email" json:"email"`       // lowercase
	PasswordHash string              `bson:"password_hash" json:"-"`
	RoleID       *primitive.ObjectID `bson:"role_id,omitempty" json:"role_id,omitempty"`
	Active       bool                `bson:"active" json:"active"`

	ResetCode   string     `bson:"reset_code,omitempty" json:"-"`
	ResetExpiry *time.Time `bson:"reset_expiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user has no role, which grants every area.
func (u User) IsAdmin() bool { return u.RoleID == nil }
