// internal/app/features/restaurants/view.go
package restaurants

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
)

// ServeList handles GET /api/restaurants. A user only ever sees their own
// restaurant, so the list has one entry.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, restID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rest, err := h.Restaurants.GetByID(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "list restaurants", err, notFound)
		return
	}
	respond.OK(w, []models.Restaurant{rest})
}

// ServeView handles GET /api/restaurants/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	if !authz.CanAccessRestaurant(r, id) {
		respond.Forbidden(w, "access denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rest, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get restaurant", err, notFound)
		return
	}
	respond.OK(w, rest)
}
