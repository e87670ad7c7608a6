// internal/domain/models/invoice.go
package models

import (
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods.
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentBoth     = "both"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []string{PaymentCash, PaymentTransfer, PaymentBoth}

// IsCashEquivalent reports whether a payment method puts money in the drawer.
func IsCashEquivalent(method string) bool {
	return method == PaymentCash || method == PaymentBoth
}

// Invoice records a sale. HistoricalCurrency and HistoricalRate are copied
// from the restaurant when the invoice is created and never change.
type Invoice struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RestaurantID  primitive.ObjectID  `bson:"restaurant_id" json:"restaurant_id"`
	Number        string              `bson:"number" json:"number"` // zero-padded, e.g. "0042"
	OrderID       primitive.ObjectID  `bson:"order_id" json:"order_id"`
	PaymentMethod string              `bson:"payment_method" json:"payment_method"`
	Subtotal      float64             `bson:"subtotal" json:"subtotal"`
	Tip           float64             `bson:"tip" json:"tip"`
	TipPercentage float64             `bson:"tip_percentage" json:"tip_percentage"`
	Total         float64             `bson:"total" json:"total"`
	AmountPaid    float64             `bson:"amount_received" json:"amount_received"`
	Change        float64             `bson:"change" json:"change"`
	CustomerName  string              `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CashierID     primitive.ObjectID  `bson:"cashier_id" json:"cashier_id"`
	WaiterID      *primitive.ObjectID `bson:"waiter_id,omitempty" json:"waiter_id,omitempty"`
	IssuedAt      time.Time           `bson:"issued_at" json:"issued_at"`

	HistoricalCurrency currency.Code `bson:"historical_currency" json:"historical_currency"`
	HistoricalRate     float64       `bson:"historical_rate" json:"historical_rate"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Amount returns the invoice total tagged with its frozen currency regime.
func (inv Invoice) Amount() currency.Amount {
	return currency.Amount{
		Value:    decimal.NewFromFloat(inv.Total),
		Currency: inv.HistoricalCurrency,
		Rate:     decimal.NewFromFloat(inv.HistoricalRate),
	}
}
