// internal/app/features/tables/handler.go
package tables

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Tables   *tablestore.Store
	Notifier *notify.Service
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, notifier *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{Tables: tablestore.New(db), Notifier: notifier, Log: logger}
}

var (
	notFound  = respond.Mapping{Err: tablestore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: tablestore.ErrDuplicateNumber, Status: http.StatusConflict}
)

type tableInput struct {
	Number   *int    `json:"number" validate:"omitempty,min=1" label:"Number"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=1,max=100" label:"Capacity"`
	Status   *string `json:"status" validate:"omitempty,oneof=free occupied" label:"Status"`
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Tables.ListByRestaurant(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "list tables", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if t, ok := h.load(ctx, w, r); ok {
		respond.OK(w, t)
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in tableInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode table", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate table", err)
		return
	}
	switch {
	case in.Number == nil:
		respond.StoreError(w, h.Log, "validate table", inputval.Invalid("number", "Number is required."))
		return
	case in.Capacity == nil:
		respond.StoreError(w, h.Log, "validate table", inputval.Invalid("capacity", "Capacity is required."))
		return
	}
	_, restID, _ := authz.UserCtx(r)
	t := models.Table{RestaurantID: restID, Number: *in.Number, Capacity: *in.Capacity}
	if in.Status != nil {
		t.Status = *in.Status
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tables.Create(ctx, t)
	if err != nil {
		respond.StoreError(w, h.Log, "create table", err, duplicate)
		return
	}
	respond.Created(w, t)
}

// HandleEdit handles PUT /api/tables/{id}. Freeing an occupied table tells
// the floor staff.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in tableInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode table", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate table", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	before, after, err := h.Tables.Update(ctx, t.ID, tablestore.Update{
		Number:   in.Number,
		Capacity: in.Capacity,
		Status:   in.Status,
	})
	if err != nil {
		respond.StoreError(w, h.Log, "update table", err, notFound, duplicate)
		return
	}
	if before.Status == models.TableOccupied && after.Status == models.TableFree {
		h.Notifier.Publish(ctx, after.RestaurantID, models.NotifyTable,
			fmt.Sprintf("Table #%d has been freed.", after.Number))
	}
	respond.OK(w, after)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Tables.Delete(ctx, t.ID); err != nil {
		respond.StoreError(w, h.Log, "delete table", err)
		return
	}
	respond.Message(w, http.StatusOK, "Table deleted.")
}

func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Table, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.Table{}, false
	}
	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get table", err, notFound)
		return models.Table{}, false
	}
	if !authz.CanAccessRestaurant(r, t.RestaurantID) {
		respond.NotFound(w, tablestore.ErrNotFound.Error())
		return models.Table{}, false
	}
	return t, true
}
