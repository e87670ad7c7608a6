// internal/app/features/register/sessions.go
package register

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type openInput struct {
	OpeningFloat *float64           `json:"opening_float" validate:"required,gte=0" label:"Opening float"`
	CashierID    primitive.ObjectID `json:"cashier_id"`
}

type closeInput struct {
	ActualCash *float64 `json:"actual_cash" validate:"required,gte=0" label:"Actual cash"`
	Notes      string   `json:"notes"`
}

type openView struct {
	HasOpen bool `json:"has_open"`
}

// cashier resolves whose register a request is about. Only admins may
// name someone else.
func cashier(r *http.Request, requested primitive.ObjectID) (primitive.ObjectID, bool) {
	userID, _, _ := authz.UserCtx(r)
	if requested.IsZero() || requested == userID {
		return userID, true
	}
	return requested, authz.IsAdmin(r)
}

// ServeMine handles GET /api/register/mine[?cashier_id=].
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	requested, err := formutil.ObjectIDQuery(r, "cashier_id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse cashier_id", err)
		return
	}
	var want primitive.ObjectID
	if requested != nil {
		want = *requested
	}
	cashierID, ok := cashier(r, want)
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	_, restID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Register.Status(ctx, restID, cashierID)
	if err != nil {
		respond.StoreError(w, h.Log, "register status", err)
		return
	}
	respond.OK(w, st)
}

// ServeHasOpen handles GET /api/register/open.
func (h *Handler) ServeHasOpen(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	open, err := h.Register.HasOpen(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "has open register", err)
		return
	}
	respond.OK(w, openView{HasOpen: open})
}

// ServeList handles GET /api/register?state=&cashier_name=&from=&to=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	f := registerstore.ListFilter{
		CashierName: formutil.Query(r, "cashier_name"),
		State:       formutil.Query(r, "state"),
	}
	if f.State != "" && f.State != models.RegisterOpen && f.State != models.RegisterClosed {
		respond.StoreError(w, h.Log, "parse state", inputval.Invalid("state", "State must be open or closed."))
		return
	}
	if from, to := formutil.Query(r, "from"), formutil.Query(r, "to"); from != "" && to != "" {
		start, end, err := reporting.DateRange(from, to, h.Location)
		if err != nil {
			respond.StoreError(w, h.Log, "parse range", inputval.Invalid("from", "Dates must be YYYY-MM-DD with from before to."))
			return
		}
		f.From, f.To = start, end
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Sessions.List(ctx, restID, f)
	if err != nil {
		respond.StoreError(w, h.Log, "list register sessions", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	rs, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	respond.OK(w, rs)
}

// HandleOpen handles POST /api/register/open.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var in openInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode open", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate open", err)
		return
	}
	cashierID, ok := cashier(r, in.CashierID)
	if !ok {
		respond.Forbidden(w, "only admins can open a register for someone else")
		return
	}
	_, restID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rs, err := h.Register.Open(ctx, restID, cashierID, *in.OpeningFloat)
	if err != nil {
		h.AuditLog.RegisterOpenFailed(ctx, r, cashierID, restID, err.Error())
		respond.StoreError(w, h.Log, "open register", err, mappings...)
		return
	}
	h.AuditLog.RegisterOpened(ctx, r, cashierID, restID, rs.ID, rs.OpeningFloat, rs.HistoricalCurrency.String())
	respond.Created(w, rs)
}

// ServePreClose handles GET /api/register/{id}/preclose.
func (h *Handler) ServePreClose(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	rs, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	rec, err := h.Register.PreClose(ctx, rs.ID)
	if err != nil {
		respond.StoreError(w, h.Log, "preclose register", err, mappings...)
		return
	}
	respond.OK(w, rec)
}

// HandleClose handles POST /api/register/{id}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	var in closeInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode close", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate close", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	rs, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	closed, err := h.Register.Close(ctx, rs.ID, *in.ActualCash, in.Notes)
	if err != nil {
		respond.StoreError(w, h.Log, "close register", err, mappings...)
		return
	}
	h.AuditLog.RegisterClosed(ctx, r, closed.OpeningCashierID, closed.RestaurantID, closed.ID,
		closed.ExpectedCash, closed.ActualCash, closed.Difference, closed.Deviation)
	respond.OK(w, closed)
}
