// internal/domain/models/role.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Access areas a role can grant.
const (
	AccessOrders  = "orders"
	AccessKitchen = "kitchen"
	AccessCash    = "cash"
	AccessReports = "reports"
)

type Role struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID `bson:"restaurant_id" json:"restaurant_id"`
	Number       int                `bson:"number" json:"number"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Active       bool               `bson:"active" json:"active"`
	Access       Access             `bson:"access" json:"access"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Access struct {
	Orders  bool `bson:"orders" json:"orders"`
	Kitchen bool `bson:"kitchen" json:"kitchen"`
	Cash    bool `bson:"cash" json:"cash"`
	Reports bool `bson:"reports" json:"reports"`
}

// Allows reports whether the access set grants area.
func (a Access) Allows(area string) bool {
	switch area {
	case AccessOrders:
		return a.Orders
	case AccessKitchen:
		return a.Kitchen
	case AccessCash:
		return a.Cash
	case AccessReports:
		return a.Reports
	}
	return false
}

// Areas returns the granted areas as a list.
func (a Access) Areas() []string {
	var out []string
	for _, area := range []string{AccessOrders, AccessKitchen, AccessCash, AccessReports} {
		if a.Allows(area) {
			out = append(out, area)
		}
	}
	return out
}
