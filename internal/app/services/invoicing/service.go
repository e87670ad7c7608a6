// internal/app/services/invoicing/service.go
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrNotFound           = invoicestore.ErrNotFound
	ErrDuplicateNumber    = invoicestore.ErrDuplicateNumber
)

type Restaurants interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Restaurant, error)
}

type Invoices interface {
	NextNumber(ctx context.Context, restaurantID primitive.ObjectID) (string, error)
	Create(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	GetByID(ctx context.Context, restaurantID, id primitive.ObjectID) (models.Invoice, error)
	Update(ctx context.Context, restaurantID, id primitive.ObjectID, upd invoicestore.Update) (models.Invoice, error)
}

// Service creates invoices under the restaurant's current currency regime.
type Service struct {
	restaurants Restaurants
	invoices    Invoices
	log         *zap.Logger
}

func New(restaurants Restaurants, invoices Invoices, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{restaurants: restaurants, invoices: invoices, log: logger}
}

// CreateInput is what a cashier submits. The number and the historical
// currency fields are never taken from input.
type CreateInput struct {
	OrderID       primitive.ObjectID  `json:"order_id" validate:"objectid" label:"Order"`
	PaymentMethod string              `json:"payment_method" validate:"required,paymentmethod" label:"Payment method"`
	Subtotal      float64             `json:"subtotal" validate:"gte=0" label:"Subtotal"`
	Tip           float64             `json:"tip" validate:"gte=0" label:"Tip"`
	TipPercentage float64             `json:"tip_percentage" validate:"gte=0,lte=100" label:"Tip percentage"`
	Total         float64             `json:"total" validate:"gt=0" label:"Total"`
	AmountPaid    *float64            `json:"amount_received" validate:"required" label:"Amount received"`
	Change        float64             `json:"change" label:"Change"`
	CustomerName  string              `json:"customer_name" validate:"max=120" label:"Customer name"`
	CashierID     primitive.ObjectID  `json:"cashier_id" validate:"objectid" label:"Cashier"`
	WaiterID      *primitive.ObjectID `json:"waiter_id,omitempty" label:"Waiter"`
	IssuedAt      time.Time           `json:"issued_at" label:"Issued at"`
}

// Create validates in, freezes the restaurant's currency and rate onto the
// invoice and assigns the next number. A number clash is reported as
// ErrDuplicateNumber; it is not retried.
func (s *Service) Create(ctx context.Context, restaurantID primitive.ObjectID, in CreateInput) (models.Invoice, error) {
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Invoice{}, err
	}

	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if errors.Is(err, restaurantstore.ErrNotFound) {
		return models.Invoice{}, ErrRestaurantNotFound
	}
	if err != nil {
		return models.Invoice{}, fmt.Errorf("load restaurant: %w", err)
	}

	number, err := s.invoices.NextNumber(ctx, restaurantID)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("next invoice number: %w", err)
	}

	inv, err := s.invoices.Create(ctx, models.Invoice{
		RestaurantID:       restaurantID,
		Number:             number,
		OrderID:            in.OrderID,
		PaymentMethod:      strings.ToLower(strings.TrimSpace(in.PaymentMethod)),
		Subtotal:           in.Subtotal,
		Tip:                in.Tip,
		TipPercentage:      in.TipPercentage,
		Total:              in.Total,
		AmountPaid:         *in.AmountPaid,
		Change:             in.Change,
		CustomerName:       htmlsanitize.PlainText(in.CustomerName),
		CashierID:          in.CashierID,
		WaiterID:           in.WaiterID,
		IssuedAt:           in.IssuedAt,
		HistoricalCurrency: rest.CurrentCurrency(),
		HistoricalRate:     rest.CurrentRate(),
	})
	if err != nil {
		if errors.Is(err, invoicestore.ErrDuplicateNumber) {
			return models.Invoice{}, ErrDuplicateNumber
		}
		return models.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}

	metrics.InvoicesCreated.WithLabelValues(inv.HistoricalCurrency.String()).Inc()
	s.log.Info("invoice created",
		zap.String("invoice_id", inv.ID.Hex()),
		zap.String("restaurant_id", restaurantID.Hex()),
		zap.String("number", inv.Number),
		zap.String("currency", inv.HistoricalCurrency.String()),
		zap.Float64("rate", inv.HistoricalRate))
	return inv, nil
}

// UpdateInput holds administrative edits. Fields left nil are unchanged.
type UpdateInput struct {
	PaymentMethod *string             `json:"payment_method" validate:"omitempty,paymentmethod" label:"Payment method"`
	Subtotal      *float64            `json:"subtotal" validate:"omitempty,gte=0" label:"Subtotal"`
	Tip           *float64            `json:"tip" validate:"omitempty,gte=0" label:"Tip"`
	TipPercentage *float64            `json:"tip_percentage" validate:"omitempty,gte=0,lte=100" label:"Tip percentage"`
	Total         *float64            `json:"total" validate:"omitempty,gt=0" label:"Total"`
	AmountPaid    *float64            `json:"amount_received" label:"Amount received"`
	Change        *float64            `json:"change" label:"Change"`
	CustomerName  *string             `json:"customer_name" validate:"omitempty,max=120" label:"Customer name"`
	WaiterID      *primitive.ObjectID `json:"waiter_id" label:"Waiter"`
	IssuedAt      *time.Time          `json:"issued_at" label:"Issued at"`
}

// Update applies an administrative edit. Number and the historical
// currency fields cannot be changed this way.
func (s *Service) Update(ctx context.Context, restaurantID, id primitive.ObjectID, in UpdateInput) (models.Invoice, error) {
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Invoice{}, err
	}
	upd := invoicestore.Update{
		Subtotal:      in.Subtotal,
		Tip:           in.Tip,
		TipPercentage: in.TipPercentage,
		Total:         in.Total,
		AmountPaid:    in.AmountPaid,
		Change:        in.Change,
		WaiterID:      in.WaiterID,
		IssuedAt:      in.IssuedAt,
	}
	if in.PaymentMethod != nil {
		m := strings.ToLower(strings.TrimSpace(*in.PaymentMethod))
		upd.PaymentMethod = &m
	}
	if in.CustomerName != nil {
		name := htmlsanitize.PlainText(*in.CustomerName)
		upd.CustomerName = &name
	}
	inv, err := s.invoices.Update(ctx, restaurantID, id, upd)
	if err != nil {
		if errors.Is(err, invoicestore.ErrNotFound) {
			return models.Invoice{}, ErrNotFound
		}
		return models.Invoice{}, fmt.Errorf("update invoice: %w", err)
	}
	return inv, nil
}
