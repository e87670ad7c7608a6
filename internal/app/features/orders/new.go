// internal/app/features/orders/new.go
package orders

import (
	"context"
	"errors"
	"net/http"

	employeestore "github.com/dalemusser/foodgestor/internal/app/store/employees"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type newOrderInput struct {
	TableID *primitive.ObjectID `json:"table_id"`
	Items   []itemInput         `json:"items" validate:"dive" label:"Items"`
	Status  string              `json:"status" validate:"omitempty,oneof=pending preparing served" label:"Status"`
}

// HandleCreate handles POST /api/orders. The order gets the restaurant's
// next number and is attributed to the employee linked to the caller's
// account, when there is one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in newOrderInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode order", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate order", err)
		return
	}
	userID, restID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.resolveItems(ctx, restID, in.Items)
	if err != nil {
		respond.StoreError(w, h.Log, "resolve items", err)
		return
	}
	table, err := h.resolveTable(ctx, restID, in.TableID)
	if err != nil {
		respond.StoreError(w, h.Log, "resolve table", err)
		return
	}

	o := models.Order{
		RestaurantID: restID,
		Items:        items,
		Total:        orderTotal(items),
		Status:       in.Status,
	}
	if table != nil {
		o.TableID = &table.ID
		o.TableNumber = table.Number
	}

	emp, err := h.Employees.GetByUserID(ctx, restID, userID)
	switch {
	case err == nil:
		o.EmployeeID = &emp.ID
	case errors.Is(err, employeestore.ErrNotFound):
		// administrators usually have no employee record
		h.Log.Debug("order placed by a user without an employee record", zap.String("user_id", userID.Hex()))
	default:
		respond.StoreError(w, h.Log, "find employee", err)
		return
	}

	o, err = h.Orders.Create(ctx, o)
	if err != nil {
		respond.StoreError(w, h.Log, "create order", err, duplicate)
		return
	}

	h.Notifier.Publish(ctx, restID, models.NotifyOrder, "New order for "+placeName(o)+".")
	respond.Created(w, o)
}
