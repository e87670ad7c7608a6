// internal/domain/models/restaurant.go
package models

import (
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Restaurant is the tenant every other record belongs to.
type Restaurant struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number            int                `bson:"number" json:"number"` // login code is REST<Number>
	Name              string             `bson:"name" json:"name"`
	NameCI            string             `bson:"name_ci" json:"-"`
	Address           string             `bson:"address" json:"address"`
	Phone             string             `bson:"phone" json:"phone"`
	Tables            int                `bson:"tables" json:"tables"`
	SelectedPositions []string           `bson:"selected_positions" json:"selected_positions"`
	Services          Services           `bson:"services" json:"services"`
	Settings          Settings           `bson:"settings" json:"settings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Services struct {
	TableService bool `bson:"table_service" json:"table_service"`
	Delivery     bool `bson:"delivery" json:"delivery"`
}

// Settings holds the restaurant's pricing configuration. ExchangeRate is
// quoted as 1 USD = ExchangeRate NIO.
type Settings struct {
	DefaultTip   float64       `bson:"default_tip" json:"default_tip"`
	DefaultTax   float64       `bson:"default_tax" json:"default_tax"`
	Currency     currency.Code `bson:"currency" json:"currency"`
	ExchangeRate float64       `bson:"exchange_rate" json:"exchange_rate"`
}

// DefaultSettings returns the settings a new restaurant starts with.
func DefaultSettings() Settings {
	return Settings{
		DefaultTip:   0,
		DefaultTax:   15,
		Currency:     currency.DefaultCode,
		ExchangeRate: currency.DefaultRate,
	}
}

// CurrentCurrency returns the configured currency, falling back to the default.
func (r Restaurant) CurrentCurrency() currency.Code {
	if r.Settings.Currency.Valid() {
		return r.Settings.Currency
	}
	return currency.DefaultCode
}

// CurrentRate returns the configured rate, falling back to the default.
func (r Restaurant) CurrentRate() float64 {
	if r.Settings.ExchangeRate > 0 {
		return r.Settings.ExchangeRate
	}
	return currency.DefaultRate
}
