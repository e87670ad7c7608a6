// internal/app/features/invoices/invoices.go
package invoices

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/services/invoicing"
	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
)

// ServeList handles GET /api/invoices, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Invoices.List(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "list invoices", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	inv, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	respond.OK(w, inv)
}

// ServeToday handles GET /api/invoices/today.
func (h *Handler) ServeToday(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sum, err := h.Reports.TodaySummary(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "today summary", err,
			respond.Mapping{Err: reporting.ErrRestaurantNotFound, Status: http.StatusNotFound})
		return
	}
	respond.OK(w, sum)
}

// HandleCreate handles POST /api/invoices. The cashier defaults to the
// caller and the issue time to now. Only admins may bill to another
// cashier's register.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in invoicing.CreateInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode invoice", err)
		return
	}
	userID, restID, _ := authz.UserCtx(r)
	if in.CashierID.IsZero() {
		in.CashierID = userID
	}
	if in.CashierID != userID && !authz.IsAdmin(r) {
		respond.Forbidden(w, "only an admin can invoice for another cashier")
		return
	}
	if in.IssuedAt.IsZero() {
		in.IssuedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.checkOrder(ctx, restID, in.OrderID); err != nil {
		respond.StoreError(w, h.Log, "resolve order", err)
		return
	}
	inv, err := h.Invoicing.Create(ctx, restID, in)
	if err != nil {
		respond.StoreError(w, h.Log, "create invoice", err, duplicate, noRestaurant)
		return
	}
	h.AuditLog.InvoiceCreated(ctx, r, authz.Actor(r), restID, inv.ID, inv.Number,
		inv.HistoricalCurrency.String(), inv.Total)
	respond.Created(w, inv)
}

// HandleEdit handles PUT /api/invoices/{id}. The number and the frozen
// currency fields are not editable.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	var in invoicing.UpdateInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode invoice", err)
		return
	}
	_, restID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Invoicing.Update(ctx, restID, id, in)
	if err != nil {
		respond.StoreError(w, h.Log, "update invoice", err, notFound)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventInvoiceUpdated, authz.Actor(r), restID, &inv.ID,
		map[string]string{"number": inv.Number})
	respond.OK(w, inv)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	inv, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	n, err := h.Invoices.Delete(ctx, inv.RestaurantID, inv.ID)
	if err != nil {
		respond.StoreError(w, h.Log, "delete invoice", err)
		return
	}
	if n == 0 {
		respond.NotFound(w, invoicing.ErrNotFound.Error())
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventInvoiceDeleted, authz.Actor(r), inv.RestaurantID, &inv.ID,
		map[string]string{"number": inv.Number})
	respond.Message(w, http.StatusOK, "Invoice deleted.")
}
