// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"

	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	rolestore "github.com/dalemusser/foodgestor/internal/app/store/roles"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the login accounts of a restaurant.
type Handler struct {
	Users       *userstore.Store
	Roles       *rolestore.Store
	Restaurants *restaurantstore.Store
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       userstore.New(db),
		Roles:       rolestore.New(db),
		Restaurants: restaurantstore.New(db),
		AuditLog:    audit,
		Log:         logger,
	}
}

var (
	notFound  = respond.Mapping{Err: userstore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: userstore.ErrDuplicateUser, Status: http.StatusConflict}
)

// checkRole verifies that roleID names a role of the restaurant.
func (h *Handler) checkRole(ctx context.Context, restaurantID primitive.ObjectID, roleID *primitive.ObjectID) error {
	if roleID == nil {
		return nil
	}
	role, err := h.Roles.GetByID(ctx, *roleID)
	if errors.Is(err, rolestore.ErrNotFound) || (err == nil && role.RestaurantID != restaurantID) {
		return inputval.Invalid("role_id", "Role not found.")
	}
	return err
}
