// internal/app/features/employees/handler.go
package employees

import (
	"context"
	"errors"
	"net/http"

	employeestore "github.com/dalemusser/foodgestor/internal/app/store/employees"
	rolestore "github.com/dalemusser/foodgestor/internal/app/store/roles"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the staff roster. Employees are the people who take
// orders and appear on invoices; they may be linked to a login account.
type Handler struct {
	Employees *employeestore.Store
	Roles     *rolestore.Store
	Users     *userstore.Store
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Employees: employeestore.New(db),
		Roles:     rolestore.New(db),
		Users:     userstore.New(db),
		Log:       logger,
	}
}

var (
	notFound  = respond.Mapping{Err: employeestore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: employeestore.ErrDuplicateEmail, Status: http.StatusConflict}
)

func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Employee, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.Employee{}, false
	}
	e, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get employee", err, notFound)
		return models.Employee{}, false
	}
	if !authz.CanAccessRestaurant(r, e.RestaurantID) {
		respond.NotFound(w, employeestore.ErrNotFound.Error())
		return models.Employee{}, false
	}
	return e, true
}

// checkLinks verifies that the role and user, when given, belong to the
// restaurant.
func (h *Handler) checkLinks(ctx context.Context, restID primitive.ObjectID, roleID, userID *primitive.ObjectID) error {
	if roleID != nil {
		role, err := h.Roles.GetByID(ctx, *roleID)
		if errors.Is(err, rolestore.ErrNotFound) || (err == nil && role.RestaurantID != restID) {
			return inputval.Invalid("role_id", "Role not found.")
		}
		if err != nil {
			return err
		}
	}
	if userID != nil {
		u, err := h.Users.GetByID(ctx, *userID)
		if errors.Is(err, userstore.ErrNotFound) || (err == nil && u.RestaurantID != restID) {
			return inputval.Invalid("user_id", "User not found.")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
