// internal/app/features/orders/items.go
package orders

import (
	"context"
	"errors"
	"fmt"

	productstore "github.com/dalemusser/foodgestor/internal/app/store/products"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type itemInput struct {
	ProductID primitive.ObjectID `json:"product_id" label:"Product"`
	Notes     string             `json:"notes" validate:"max=300" label:"Notes"`
	Quantity  int                `json:"quantity" validate:"min=1,max=999" label:"Quantity"`
	Price     *float64           `json:"price" validate:"omitempty,gte=0" label:"Price"`
	Status    string             `json:"status" validate:"omitempty,oneof=pending preparing served cancelled" label:"Item status"`
}

// resolveItems turns request lines into order items. Names and default
// prices come from the restaurant's menu; unavailable products are refused.
func (h *Handler) resolveItems(ctx context.Context, restID primitive.ObjectID, in []itemInput) ([]models.OrderItem, error) {
	if len(in) == 0 {
		return nil, inputval.Invalid("items", "An order needs at least one item.")
	}
	out := make([]models.OrderItem, 0, len(in))
	for i, line := range in {
		field := fmt.Sprintf("items[%d].product_id", i)
		if line.ProductID.IsZero() {
			return nil, inputval.Invalid(field, "Product is required.")
		}
		p, err := h.Products.GetByID(ctx, line.ProductID)
		if errors.Is(err, productstore.ErrNotFound) || (err == nil && p.RestaurantID != restID) {
			return nil, inputval.Invalid(field, "Product not found.")
		}
		if err != nil {
			return nil, err
		}
		if !p.Available {
			return nil, inputval.Invalid(field, fmt.Sprintf("%s is sold out.", p.Name))
		}
		price := p.Price
		if line.Price != nil {
			price = *line.Price
		}
		out = append(out, models.OrderItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Notes:       htmlsanitize.PlainTextMax(line.Notes, 300),
			Quantity:    line.Quantity,
			Price:       price,
			Status:      line.Status,
		})
	}
	return out, nil
}

// orderTotal sums quantity times price over the lines that are not
// cancelled, rounded to cents.
func orderTotal(items []models.OrderItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		if it.Status == models.OrderCancelled {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return currency.Round2(sum)
}

// resolveTable loads the table an order is for. A nil ID is takeout.
func (h *Handler) resolveTable(ctx context.Context, restID primitive.ObjectID, id *primitive.ObjectID) (*models.Table, error) {
	if id == nil || id.IsZero() {
		return nil, nil
	}
	t, err := h.Tables.GetByID(ctx, *id)
	if errors.Is(err, tablestore.ErrNotFound) || (err == nil && t.RestaurantID != restID) {
		return nil, inputval.Invalid("table_id", "Table not found.")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// placeName is how notifications refer to an order.
func placeName(o models.Order) string {
	if o.IsTakeout() {
		return "takeout"
	}
	return fmt.Sprintf("Table %d", o.TableNumber)
}
