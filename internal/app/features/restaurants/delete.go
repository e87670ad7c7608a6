// internal/app/features/restaurants/delete.go
package restaurants

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/restaurants/{id}. Admins only. Records
// belonging to the restaurant are left in place.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	n, err := h.Restaurants.Delete(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "delete restaurant", err)
		return
	}
	if n == 0 {
		respond.NotFound(w, "restaurant not found")
		return
	}
	h.Log.Info("restaurant deleted", zap.String("restaurant_id", id.Hex()))
	respond.Message(w, http.StatusOK, "Restaurant deleted.")
}
