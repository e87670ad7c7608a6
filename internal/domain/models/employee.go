// internal/domain/models/employee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Employee struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID  `bson:"restaurant_id" json:"restaurant_id"`
	Number       int                 `bson:"number" json:"number"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Email        string              `bson:"email" json:"email"`
	RoleID       *primitive.ObjectID `bson:"role_id,omitempty" json:"role_id,omitempty"`
	UserID       *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Active       bool                `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
