// internal/app/features/users/edit.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/normalize"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type editUserInput struct {
	CurrentPassword string              `json:"current_password" validate:"required" label:"Current password"`
	Username        *string             `json:"username" validate:"omitempty,min=3,max=50" label:"Username"`
	Email           *string             `json:"email" validate:"omitempty,email,max=254" label:"Email"`
	NewPassword     *string             `json:"new_password" validate:"omitempty,min=6,max=128" label:"New password"`
	RoleID          *primitive.ObjectID `json:"role_id" label:"Role"`
	ClearRole       bool                `json:"clear_role"`
	Active          *bool               `json:"active"`
}

// HandleEdit handles PUT /api/users/{id}. Every edit is confirmed with the
// account's current password. Role and active flag are admin-only.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return
	}
	self, _, _ := authz.UserCtx(r)
	admin := authz.IsAdmin(r)
	if id != self && !admin {
		respond.Forbidden(w, "access denied")
		return
	}

	var in editUserInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode user", err)
		return
	}
	if in.Username != nil {
		v := normalize.Username(*in.Username)
		in.Username = &v
	}
	if in.Email != nil {
		v := normalize.Email(*in.Email)
		in.Email = &v
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate user", err)
		return
	}
	if !admin && (in.RoleID != nil || in.ClearRole || in.Active != nil) {
		respond.Forbidden(w, "only administrators can change roles")
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
	if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		respond.Unauthorized(w, "current password is incorrect")
		return
	}
	if err := h.checkRole(ctx, u.RestaurantID, in.RoleID); err != nil {
		respond.StoreError(w, h.Log, "check role", err)
		return
	}

	upd := userstore.Update{
		Username:  in.Username,
		Email:     in.Email,
		RoleID:    in.RoleID,
		ClearRole: in.ClearRole,
		Active:    in.Active,
	}
	if in.NewPassword != nil {
		hash, err := auth.HashPassword(*in.NewPassword)
		if err != nil {
			respond.StoreError(w, h.Log, "hash password", err)
			return
		}
		upd.PasswordHash = &hash
	}

	out, err := h.Users.Update(ctx, id, upd)
	if err != nil {
		respond.StoreError(w, h.Log, "update user", err, notFound, duplicate)
		return
	}

	if in.NewPassword != nil {
		h.AuditLog.PasswordChanged(ctx, r, out.ID, &out.RestaurantID, "profile")
	}
	h.AuditLog.Admin(ctx, r, audit.EventUserUpdated, authz.Actor(r), out.RestaurantID, &out.ID, nil)
	respond.OK(w, out)
}
