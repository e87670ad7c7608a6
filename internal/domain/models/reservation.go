// internal/domain/models/reservation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

var ReservationStatuses = []string{ReservationPending, ReservationConfirmed, ReservationCancelled}

// Reservation dates and times are kept as the strings the front desk
// entered: Date is YYYY-MM-DD and Time is HH:MM.
type Reservation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID `bson:"restaurant_id" json:"restaurant_id"`
	TableID      primitive.ObjectID `bson:"table_id" json:"table_id"`
	Date         string             `bson:"date" json:"date"`
	Time         string             `bson:"time" json:"time"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status       string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
