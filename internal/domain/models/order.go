// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderServed    = "served"
	OrderCancelled = "cancelled"
	OrderPaid      = "paid"
)

var OrderStatuses = []string{OrderPending, OrderPreparing, OrderServed, OrderCancelled, OrderPaid}

// ActiveOrderStatuses are the statuses the kitchen still has to act on.
var ActiveOrderStatuses = []string{OrderPending, OrderPreparing}

type Order struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID  `bson:"restaurant_id" json:"restaurant_id"`
	Number       int                 `bson:"number" json:"number"`
	TableID      *primitive.ObjectID `bson:"table_id,omitempty" json:"table_id,omitempty"`
	TableNumber  int                 `bson:"table_number" json:"table_number"` // 0 = takeout
	EmployeeID   *primitive.ObjectID `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
	Items        []OrderItem         `bson:"items" json:"items"`
	Total        float64             `bson:"total" json:"total"`
	OrderedAt    time.Time           `bson:"ordered_at" json:"ordered_at"`
	Status       string              `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type OrderItem struct {
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Price       float64            `bson:"price" json:"price"`
	Status      string             `bson:"status,omitempty" json:"status,omitempty"`
	UpdatedAt   *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsTakeout reports whether the order is not attached to a table.
func (o Order) IsTakeout() bool { return o.TableID == nil || o.TableNumber == 0 }
