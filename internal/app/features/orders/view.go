// internal/app/features/orders/view.go
package orders

import (
	"context"
	"net/http"
	"slices"
	"strings"

	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
)

// ServeList handles GET /api/orders?status=pending,preparing&table_id=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	var f orderstore.ListFilter
	if raw := formutil.Query(r, "status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToLower(strings.TrimSpace(s))
			if !slices.Contains(models.OrderStatuses, s) {
				respond.StoreError(w, h.Log, "parse status", inputval.Invalid("status", "Unknown order status."))
				return
			}
			f.Statuses = append(f.Statuses, s)
		}
	}
	tableID, err := formutil.ObjectIDQuery(r, "table_id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse table_id", err)
		return
	}
	f.TableID = tableID
	if n, ok := formutil.IntQuery(r, "limit"); ok && n > 0 {
		f.Limit = int64(n)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Orders.List(ctx, restID, f)
	if err != nil {
		respond.StoreError(w, h.Log, "list orders", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if o, ok := h.load(ctx, w, r); ok {
		respond.OK(w, o)
	}
}

type pendingView struct {
	HasPendingOrders bool  `json:"has_pending_orders"`
	Count            int64 `json:"count"`
}

// ServePending handles GET /api/orders/pending. The cashier checks it
// before closing the register.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Orders.CountUnsettled(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "count pending orders", err)
		return
	}
	respond.OK(w, pendingView{HasPendingOrders: n > 0, Count: n})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Orders.Delete(ctx, o.ID); err != nil {
		respond.StoreError(w, h.Log, "delete order", err)
		return
	}
	respond.Message(w, http.StatusOK, "Order deleted.")
}
