// internal/app/features/users/delete.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /api/users/{id}. Admins only; an admin cannot
// delete their own account.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	if self, _, _ := authz.UserCtx(r); self == id {
		respond.BadRequest(w, "you cannot delete your own account")
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
	if _, err := h.Users.Delete(ctx, id); err != nil {
		respond.StoreError(w, h.Log, "delete user", err)
		return
	}

	h.AuditLog.Admin(ctx, r, audit.EventUserDeleted, authz.Actor(r), u.RestaurantID, &u.ID,
		map[string]string{"username": u.Username})
	respond.Message(w, http.StatusOK, "User deleted.")
}
