// internal/app/features/roles/handler.go
package roles

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	rolestore "github.com/dalemusser/foodgestor/internal/app/store/roles"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Roles    *rolestore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Roles: rolestore.New(db), AuditLog: audit, Log: logger}
}

var (
	notFound  = respond.Mapping{Err: rolestore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: rolestore.ErrDuplicateName, Status: http.StatusConflict}
)

type roleInput struct {
	Name   *string        `json:"name" validate:"omitempty,min=1,max=60" label:"Name"`
	Active *bool          `json:"active"`
	Access *models.Access `json:"access"`
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Roles.ListByRestaurant(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "list roles", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	respond.OK(w, role)
}

// HandleCreate handles POST /api/roles. Names are unique per restaurant,
// ignoring case and accents.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode role", err)
		return
	}
	if in.Name == nil || htmlsanitize.PlainText(*in.Name) == "" {
		respond.StoreError(w, h.Log, "validate role", inputval.Invalid("name", "Name is required."))
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate role", err)
		return
	}
	_, restID, _ := authz.UserCtx(r)

	role := models.Role{
		RestaurantID: restID,
		Name:         htmlsanitize.PlainText(*in.Name),
		Active:       true,
	}
	if in.Active != nil {
		role.Active = *in.Active
	}
	if in.Access != nil {
		role.Access = *in.Access
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, err := h.Roles.Create(ctx, role)
	if err != nil {
		respond.StoreError(w, h.Log, "create role", err, duplicate)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventRoleCreated, authz.Actor(r), restID, &role.ID,
		map[string]string{"name": role.Name})
	respond.Created(w, role)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode role", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.StoreError(w, h.Log, "validate role", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	upd := rolestore.Update{Active: in.Active, Access: in.Access}
	if in.Name != nil {
		name := htmlsanitize.PlainText(*in.Name)
		if name == "" {
			respond.StoreError(w, h.Log, "validate role", inputval.Invalid("name", "Name is required."))
			return
		}
		upd.Name = &name
	}

	out, err := h.Roles.Update(ctx, role.ID, upd)
	if err != nil {
		respond.StoreError(w, h.Log, "update role", err, notFound, duplicate)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventRoleUpdated, authz.Actor(r), out.RestaurantID, &out.ID, nil)
	respond.OK(w, out)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Roles.Delete(ctx, role.ID); err != nil {
		respond.StoreError(w, h.Log, "delete role", err)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventRoleDeleted, authz.Actor(r), role.RestaurantID, &role.ID,
		map[string]string{"name": role.Name})
	respond.Message(w, http.StatusOK, "Role deleted.")
}

// load fetches the {id} role and hides roles of other restaurants.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Role, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.Role{}, false
	}
	role, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get role", err, notFound)
		return models.Role{}, false
	}
	if !authz.CanAccessRestaurant(r, role.RestaurantID) {
		respond.NotFound(w, rolestore.ErrNotFound.Error())
		return models.Role{}, false
	}
	return role, true
}
