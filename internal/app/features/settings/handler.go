// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"errors"
	"net/http"

	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"github.com/dalemusser/foodgestor/internal/app/system/timezones"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the pricing settings of the caller's restaurant.
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

var notFound = respond.Mapping{Err: restaurantstore.ErrNotFound, Status: http.StatusNotFound}

// ServeSettings handles GET /api/settings.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rest, err := h.Restaurants.GetByID(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "load settings", err, notFound)
		return
	}
	respond.OK(w, rest.Settings)
}

// ServeTimezones handles GET /api/settings/timezones: the zones a
// deployment may pick for report periods, grouped by region.
func (h *Handler) ServeTimezones(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, timezones.Groups())
}

// HandleUpdate handles PUT /api/settings. Admins only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		respond.StoreError(w, h.Log, "decode settings", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	before, err := h.Restaurants.GetByID(ctx, restID)
	if err != nil {
		respond.StoreError(w, h.Log, "load settings", err, notFound)
		return
	}
	var upd restaurantstore.Update
	if err := in.Apply(before.Settings, &upd); err != nil {
		respond.StoreError(w, h.Log, "validate settings", err)
		return
	}
	after, err := h.Restaurants.Update(ctx, restID, upd)
	if errors.Is(err, restaurantstore.ErrNotFound) {
		respond.NotFound(w, "restaurant not found")
		return
	}
	if err != nil {
		respond.StoreError(w, h.Log, "update settings", err)
		return
	}

	AuditRegime(ctx, r, h.AuditLog, authz.Actor(r), before, after)
	respond.OK(w, after.Settings)
}
