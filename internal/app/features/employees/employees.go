// internal/app/features/employees/employees.go
package employees

import (
	"context"
	"net/http"

	employeestore "github.com/dalemusser/foodgestor/internal/app/store/employees"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type employeeInput struct {
	FullName *string             `json:"full_name" validate:"omitempty,max=120" label:"Full name"`
	Phone    *string             `json:"phone" validate:"omitempty,max=40" label:"Phone"`
	Email    *string             `json:"email" validate:"omitempty,email,max=254" label:"Email"`
	RoleID   *primitive.ObjectID `json:"role_id"`
	UserID   *primitive.ObjectID `json:"user_id"`
	Active   *bool               `json:"active"`
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Employees.ListByRestaurant(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "list employees", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if e, ok := h.load(ctx, w, r); ok {
		respond.OK(w, e)
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in employeeInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode employee", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate employee", err)
		return
	}
	e := models.Employee{Active: true, RoleID: in.RoleID, UserID: in.UserID}
	if in.FullName != nil {
		e.FullName = htmlsanitize.PlainText(*in.FullName)
	}
	if in.Email != nil {
		e.Email = *in.Email
	}
	if in.Phone != nil {
		e.Phone = htmlsanitize.PlainText(*in.Phone)
	}
	if in.Active != nil {
		e.Active = *in.Active
	}
	switch {
	case e.FullName == "":
		respond.StoreError(w, h.Log, "validate employee", inputval.Invalid("full_name", "Full name is required."))
		return
	case e.Email == "":
		respond.StoreError(w, h.Log, "validate employee", inputval.Invalid("email", "Email is required."))
		return
	}
	_, restID, _ := authz.UserCtx(r)
	e.RestaurantID = restID

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.checkLinks(ctx, restID, e.RoleID, e.UserID); err != nil {
		respond.StoreError(w, h.Log, "check employee links", err)
		return
	}
	e, err := h.Employees.Create(ctx, e)
	if err != nil {
		respond.StoreError(w, h.Log, "create employee", err, duplicate)
		return
	}
	respond.Created(w, e)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in employeeInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode employee", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate employee", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if err := h.checkLinks(ctx, e.RestaurantID, in.RoleID, in.UserID); err != nil {
		respond.StoreError(w, h.Log, "check employee links", err)
		return
	}

	upd := employeestore.Update{Email: in.Email, RoleID: in.RoleID, UserID: in.UserID, Active: in.Active}
	if in.FullName != nil {
		name := htmlsanitize.PlainText(*in.FullName)
		if name == "" {
			respond.StoreError(w, h.Log, "validate employee", inputval.Invalid("full_name", "Full name is required."))
			return
		}
		upd.FullName = &name
	}
	if in.Phone != nil {
		phone := htmlsanitize.PlainText(*in.Phone)
		upd.Phone = &phone
	}

	out, err := h.Employees.Update(ctx, e.ID, upd)
	if err != nil {
		respond.StoreError(w, h.Log, "update employee", err, notFound, duplicate)
		return
	}
	respond.OK(w, out)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Employees.Delete(ctx, e.ID); err != nil {
		respond.StoreError(w, h.Log, "delete employee", err)
		return
	}
	respond.Message(w, http.StatusOK, "Employee deleted.")
}
