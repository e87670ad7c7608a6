// internal/app/features/restaurants/handler.go
package restaurants

import (
	"net/http"

	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the restaurant (tenant) records.
type Handler struct {
	Restaurants *restaurantstore.Store
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Restaurants: restaurantstore.New(db),
		AuditLog:    audit,
		Log:         logger,
	}
}

var (
	notFound  = respond.Mapping{Err: restaurantstore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: restaurantstore.ErrDuplicateNumber, Status: http.StatusConflict}
)
