// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the floor dashboard every signed-in user lands on.
type Handler struct {
	Reports *reporting.Service
	Log     *zap.Logger
}

func NewHandler(reports *reporting.Service, logger *zap.Logger) *Handler {
	return &Handler{Reports: reports, Log: logger}
}

var noRestaurant = respond.Mapping{Err: reporting.ErrRestaurantNotFound, Status: http.StatusNotFound}

// ServeStats handles GET /api/dashboard/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stats, err := h.Reports.DashboardStats(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "dashboard stats", err, noRestaurant)
		return
	}
	respond.OK(w, stats)
}

// ServeRecentOrders handles GET /api/dashboard/recent-orders.
func (h *Handler) ServeRecentOrders(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	orders, err := h.Reports.RecentOrders(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "recent orders", err, noRestaurant)
		return
	}
	respond.OK(w, orders)
}
