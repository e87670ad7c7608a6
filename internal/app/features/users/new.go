// internal/app/features/users/new.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/normalize"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type newUserInput struct {
	RestaurantID string              `json:"restaurant_id" validate:"omitempty,objectid" label:"Restaurant"`
	Username     string              `json:"username" validate:"required,min=3,max=50" label:"Username"`
	Email        string              `json:"email" validate:"required,email,max=254" label:"Email"`
	Password     string              `json:"password" validate:"required,min=6,max=128" label:"Password"`
	RoleID       *primitive.ObjectID `json:"role_id,omitempty" label:"Role"`
	Active       *bool               `json:"active,omitempty"`
}

// HandleCreate handles POST /api/users.
//
// The first user of a restaurant may be created without signing in; it
// becomes the administrator (no role). After that only an administrator
// of the restaurant may add users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in newUserInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode user", err)
		return
	}
	in.Username = normalize.Username(in.Username)
	in.Email = normalize.Email(in.Email)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate user", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	restID, bootstrap, ok := h.createScope(ctx, w, r, strings.TrimSpace(in.RestaurantID))
	if !ok {
		return
	}
	if bootstrap {
		// the first account administers the restaurant
		in.RoleID = nil
	} else if err := h.checkRole(ctx, restID, in.RoleID); err != nil {
		respond.StoreError(w, h.Log, "check role", err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		respond.StoreError(w, h.Log, "hash password", err)
		return
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	u, err := h.Users.Create(ctx, models.User{
		RestaurantID: restID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       in.RoleID,
		Active:       active,
	})
	if err != nil {
		respond.StoreError(w, h.Log, "create user", err, duplicate)
		return
	}

	h.AuditLog.Admin(ctx, r, audit.EventUserCreated, authz.Actor(r), restID, &u.ID, map[string]string{
		"username":  u.Username,
		"bootstrap": boolString(bootstrap),
	})
	respond.Created(w, u)
}

// createScope decides which restaurant the new user joins and whether this
// is the restaurant's first account. It writes the error response itself.
func (h *Handler) createScope(ctx context.Context, w http.ResponseWriter, r *http.Request, requested string) (primitive.ObjectID, bool, bool) {
	if _, signedIn := auth.CurrentUser(r); signedIn {
		restID, ok := authz.Scope(r, requested)
		if !ok {
			respond.Forbidden(w, "access denied")
			return primitive.NilObjectID, false, false
		}
		if !authz.IsAdmin(r) {
			respond.Forbidden(w, "only administrators can add users")
			return primitive.NilObjectID, false, false
		}
		return restID, false, true
	}

	if requested == "" {
		respond.Unauthorized(w, "authentication required")
		return primitive.NilObjectID, false, false
	}
	restID, _ := primitive.ObjectIDFromHex(requested)
	if _, err := h.Restaurants.GetByID(ctx, restID); err != nil {
		respond.StoreError(w, h.Log, "get restaurant", err,
			respond.Mapping{Err: restaurantstore.ErrNotFound, Status: http.StatusNotFound})
		return primitive.NilObjectID, false, false
	}
	n, err := h.Users.CountByRestaurant(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "count users", err)
		return primitive.NilObjectID, false, false
	}
	if n > 0 {
		respond.Unauthorized(w, "authentication required")
		return primitive.NilObjectID, false, false
	}
	return restID, true, true
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
