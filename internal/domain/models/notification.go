// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyOrder     = "order"
	NotifyTable     = "table"
	NotifyInventory = "inventory"
	NotifyGeneral   = "general"
)

type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID `bson:"restaurant_id" json:"restaurant_id"`
	Message      string             `bson:"message" json:"message"`
	Type         string             `bson:"type" json:"type"`
	Read         bool               `bson:"read" json:"read"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
