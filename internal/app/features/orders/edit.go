// internal/app/features/orders/edit.go
package orders

import (
	"context"
	"errors"
	"net/http"

	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/app/system/txn"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type editOrderInput struct {
	TableID *primitive.ObjectID `json:"table_id"`
	Items   *[]itemInput        `json:"items" validate:"omitempty,dive" label:"Items"`
	Status  *string             `json:"status" validate:"omitempty,oneof=pending preparing served cancelled paid" label:"Status"`
}

// HandleEdit handles PUT /api/orders/{id}. Cancelling the last live order
// of a table frees the table. Moving an order into preparing or served
// notifies the floor.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in editOrderInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode order", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate order", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	o, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	upd := orderstore.Update{Status: in.Status}
	if in.Items != nil {
		items, err := h.resolveItems(ctx, o.RestaurantID, *in.Items)
		if err != nil {
			respond.StoreError(w, h.Log, "resolve items", err)
			return
		}
		total := orderTotal(items)
		upd.Items = &items
		upd.Total = &total
	}
	if in.TableID != nil {
		table, err := h.resolveTable(ctx, o.RestaurantID, in.TableID)
		if err != nil {
			respond.StoreError(w, h.Log, "resolve table", err)
			return
		}
		if table != nil {
			upd.TableID = &table.ID
			upd.TableNumber = &table.Number
		}
	}

	// cancelling the last live order frees its table in the same transaction
	var before, after models.Order
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		before, after, err = h.Orders.Update(ctx, o.RestaurantID, o.ID, upd)
		if err != nil {
			return err
		}
		if after.Status == models.OrderCancelled && before.Status != models.OrderCancelled && after.TableID != nil {
			return h.freeTableIfIdle(ctx, after)
		}
		return nil
	})
	if err != nil {
		respond.StoreError(w, h.Log, "update order", err, notFound)
		return
	}

	if msg := statusMessage(before.Status, after); msg != "" {
		h.Notifier.Publish(ctx, after.RestaurantID, models.NotifyOrder, msg)
	}
	respond.OK(w, after)
}

// freeTableIfIdle frees the order's table once every order on it is
// cancelled.
func (h *Handler) freeTableIfIdle(ctx context.Context, o models.Order) error {
	idle, err := h.Orders.AllCancelledForTable(ctx, o.RestaurantID, *o.TableID)
	if err != nil || !idle {
		return err
	}
	err = h.Tables.SetStatus(ctx, *o.TableID, models.TableFree)
	if errors.Is(err, tablestore.ErrNotFound) {
		// the table was deleted while the order was live
		return nil
	}
	if err != nil {
		return err
	}
	h.Log.Debug("table freed", zap.String("table_id", o.TableID.Hex()))
	return nil
}

func statusMessage(prev string, o models.Order) string {
	if prev == o.Status {
		return ""
	}
	switch o.Status {
	case models.OrderPreparing:
		return "The order for " + placeName(o) + " is being prepared."
	case models.OrderServed:
		return "The order for " + placeName(o) + " is ready!"
	}
	return ""
}
