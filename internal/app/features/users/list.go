// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
)

// ServeList handles GET /api/users. Admins only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Users.ListByRestaurant(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "list users", err)
		return
	}
	respond.OK(w, list)
}

// ServeView handles GET /api/users/{id}. Admins see any user of their
// restaurant; everyone else only themselves.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	self, _, _ := authz.UserCtx(r)
	if id != self && !authz.IsAdmin(r) {
		respond.Forbidden(w, "access denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get user", err, notFound)
		return
	}
	if !authz.CanAccessRestaurant(r, u.RestaurantID) {
		respond.NotFound(w, "user not found")
		return
	}
	respond.OK(w, u)
}
