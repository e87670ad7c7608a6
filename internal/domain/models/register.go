// internal/domain/models/register.go
package models

import (
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Register session states. A session moves open → closed exactly once.
const (
	RegisterOpen   = "open"
	RegisterClosed = "closed"
)

// Deviation levels assigned when a session is closed.
const (
	DeviationNormal   = "normal"
	DeviationWarning  = "warning"
	DeviationCritical = "critical"
)

// RegisterSession is one cashier's cash-drawer period at a restaurant.
// Fields below the separator are only set by the close operation.
type RegisterSession struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID     primitive.ObjectID `bson:"restaurant_id" json:"restaurant_id"`
	OpeningCashierID primitive.ObjectID `bson:"opening_cashier_id" json:"opening_cashier_id"`
	CashierName      string             `bson:"cashier_name" json:"cashier_name"`
	OpenedAt         time.Time          `bson:"opened_at" json:"opened_at"`
	OpeningFloat     float64            `bson:"opening_float" json:"opening_float"`
	State            string             `bson:"state" json:"state"`

	HistoricalCurrency currency.Code `bson:"historical_currency" json:"historical_currency"`
	HistoricalRate     float64       `bson:"historical_rate" json:"historical_rate"`

	// set on close
	ClosedAt         *time.Time          `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	ClosingCashierID *primitive.ObjectID `bson:"closing_cashier_id,omitempty" json:"closing_cashier_id,omitempty"`
	SystemCashSales  float64             `bson:"system_cash_sales" json:"system_cash_sales"`
	SystemCardSales  float64             `bson:"system_card_sales" json:"system_card_sales"`
	OtherIncome      float64             `bson:"other_income" json:"other_income"`
	CashOut          float64             `bson:"cash_out" json:"cash_out"`
	ExpectedCash     float64             `bson:"expected_cash" json:"expected_cash"`
	ActualCash       float64             `bson:"actual_cash" json:"actual_cash"`
	Difference       float64             `bson:"difference" json:"difference"`
	Deviation        string              `bson:"deviation,omitempty" json:"deviation,omitempty"`
	MixedCurrency    bool                `bson:"mixed_currency,omitempty" json:"mixed_currency,omitempty"`
	Notes            string              `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (s RegisterSession) IsOpen() bool { return s.State == RegisterOpen }
