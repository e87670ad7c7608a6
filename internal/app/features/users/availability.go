// internal/app/features/users/availability.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeAvailability handles GET /api/users/check-availability?username=&email=.
// Anonymous callers name the restaurant with restaurant_id; signed-in
// callers check their own. Taken identifiers answer 409.
func (h *Handler) ServeAvailability(w http.ResponseWriter, r *http.Request) {
	requested := formutil.Query(r, "restaurant_id")
	var restID primitive.ObjectID
	if _, signedIn := auth.CurrentUser(r); signedIn {
		id, ok := authz.Scope(r, requested)
		if !ok {
			respond.Forbidden(w, "access denied")
			return
		}
		restID = id
	} else {
		id, err := primitive.ObjectIDFromHex(requested)
		if err != nil {
			respond.BadRequest(w, "restaurant_id is required")
			return
		}
		restID = id
	}

	username := formutil.Query(r, "username")
	email := formutil.Query(r, "email")
	if username == "" && email == "" {
		respond.BadRequest(w, "username or email is required")
		return
	}
	exclude, err := formutil.ObjectIDQuery(r, "exclude_id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse exclude_id", err)
		return
	}
	excludeID := primitive.NilObjectID
	if exclude != nil {
		excludeID = *exclude
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	taken, err := h.Users.IdentifierTaken(ctx, restID, username, email, excludeID)
	if err != nil {
		respond.StoreError(w, h.Log, "check availability", err)
		return
	}
	if taken {
		respond.Conflict(w, "username or email is already in use")
		return
	}
	respond.OK(w, map[string]bool{"available": true})
}
