// internal/app/features/reservations/handler.go
package reservations

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	reservationstore "github.com/dalemusser/foodgestor/internal/app/store/reservations"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Reservations *reservationstore.Store
	Tables       *tablestore.Store
	Notifier     *notify.Service
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, notifier *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Reservations: reservationstore.New(db),
		Tables:       tablestore.New(db),
		Notifier:     notifier,
		Log:          logger,
	}
}

var notFound = respond.Mapping{Err: reservationstore.ErrNotFound, Status: http.StatusNotFound}

type reservationInput struct {
	TableID      *primitive.ObjectID `json:"table_id"`
	Date         *string             `json:"date" validate:"omitempty,datetime=2006-01-02" label:"Date"`
	Time         *string             `json:"time" validate:"omitempty,datetime=15:04" label:"Time"`
	CustomerName *string             `json:"customer_name" validate:"omitempty,max=120" label:"Customer name"`
	Phone        *string             `json:"phone" validate:"omitempty,max=40" label:"Phone"`
	Status       *string             `json:"status" validate:"omitempty,oneof=pending confirmed cancelled" label:"Status"`
}

// ServeList handles GET /api/reservations?date=YYYY-MM-DD&table_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	f := reservationstore.ListFilter{Date: formutil.Query(r, "date")}
	if f.Date != "" {
		if err := inputval.Validate(struct {
			Date string `validate:"datetime=2006-01-02" label:"Date"`
		}{f.Date}).Err(); err != nil {
			respond.StoreError(w, h.Log, "parse date", err)
			return
		}
	}
	tableID, err := formutil.ObjectIDQuery(r, "table_id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse table_id", err)
		return
	}
	f.TableID = tableID

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Reservations.List(ctx, restID, f)
	if err != nil {
		respond.StoreError(w, h.Log, "list reservations", err)
		return
	}
	respond.OK(w, list)
}

// HandleCreate handles POST /api/reservations. New reservations start
// pending and are announced to the floor.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in reservationInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode reservation", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate reservation", err)
		return
	}
	var missing error
	switch {
	case in.TableID == nil:
		missing = inputval.Invalid("table_id", "Table is required.")
	case in.Date == nil:
		missing = inputval.Invalid("date", "Date is required.")
	case in.Time == nil:
		missing = inputval.Invalid("time", "Time is required.")
	case in.CustomerName == nil || htmlsanitize.PlainText(*in.CustomerName) == "":
		missing = inputval.Invalid("customer_name", "Customer name is required.")
	}
	if missing != nil {
		respond.StoreError(w, h.Log, "validate reservation", missing)
		return
	}
	_, restID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	table, err := h.table(ctx, restID, *in.TableID)
	if err != nil {
		respond.StoreError(w, h.Log, "resolve table", err)
		return
	}
	res := models.Reservation{
		RestaurantID: restID,
		TableID:      table.ID,
		Date:         *in.Date,
		Time:         *in.Time,
		CustomerName: htmlsanitize.PlainText(*in.CustomerName),
		Status:       models.ReservationPending,
	}
	if in.Phone != nil {
		res.Phone = htmlsanitize.PlainText(*in.Phone)
	}

	res, err = h.Reservations.Create(ctx, res)
	if err != nil {
		respond.StoreError(w, h.Log, "create reservation", err)
		return
	}
	h.Notifier.Publish(ctx, restID, models.NotifyTable,
		fmt.Sprintf("New reservation at Table #%d for %s.", table.Number, res.Time))
	respond.Created(w, res)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	var in reservationInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode reservation", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate reservation", err)
		return
	}
	_, restID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	upd := reservationstore.Update{Date: in.Date, Time: in.Time, Status: in.Status}
	if in.TableID != nil {
		table, err := h.table(ctx, restID, *in.TableID)
		if err != nil {
			respond.StoreError(w, h.Log, "resolve table", err)
			return
		}
		upd.TableID = &table.ID
	}
	if in.CustomerName != nil {
		name := htmlsanitize.PlainText(*in.CustomerName)
		if name == "" {
			respond.StoreError(w, h.Log, "validate reservation", inputval.Invalid("customer_name", "Customer name is required."))
			return
		}
		upd.CustomerName = &name
	}
	if in.Phone != nil {
		phone := htmlsanitize.PlainText(*in.Phone)
		upd.Phone = &phone
	}

	out, err := h.Reservations.Update(ctx, restID, id, upd)
	if err != nil {
		respond.StoreError(w, h.Log, "update reservation", err, notFound)
		return
	}
	respond.OK(w, out)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	_, restID, _ := authz.UserCtx(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Reservations.Delete(ctx, restID, id)
	if err != nil {
		respond.StoreError(w, h.Log, "delete reservation", err)
		return
	}
	if n == 0 {
		respond.NotFound(w, reservationstore.ErrNotFound.Error())
		return
	}
	respond.Message(w, http.StatusOK, "Reservation deleted.")
}

func (h *Handler) table(ctx context.Context, restID, id primitive.ObjectID) (models.Table, error) {
	t, err := h.Tables.GetByID(ctx, id)
	if errors.Is(err, tablestore.ErrNotFound) || (err == nil && t.RestaurantID != restID) {
		return models.Table{}, inputval.Invalid("table_id", "Table not found.")
	}
	return t, err
}
