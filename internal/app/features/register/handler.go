// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/services/cashregister"
	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves cash-register sessions.
type Handler struct {
	Register *cashregister.Service
	Sessions *registerstore.Store
	AuditLog *auditlog.Logger
	// Location reads list date filters; it matches the reports' zone.
	Location *time.Location
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	sessions := registerstore.New(db)
	return &Handler{
		Register: cashregister.New(restaurantstore.New(db), userstore.New(db), sessions, invoicestore.New(db), logger),
		Sessions: sessions,
		AuditLog: audit,
		Location: loc,
		Log:      logger,
	}
}

var mappings = []respond.Mapping{
	{Err: cashregister.ErrSessionNotFound, Status: http.StatusNotFound},
	{Err: cashregister.ErrNotOpen, Status: http.StatusNotFound, Message: "register session is not open"},
	{Err: cashregister.ErrAlreadyOpen, Status: http.StatusConflict, Message: "cashier already has an open register"},
	{Err: cashregister.ErrRestaurantNotFound, Status: http.StatusNotFound},
	{Err: cashregister.ErrCashierNotFound, Status: http.StatusNotFound},
	{Err: cashregister.ErrInvalidAmount, Status: http.StatusBadRequest},
}

// load fetches {id} within the caller's restaurant. Cashiers only see the
// sessions they opened; admins see all of them.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.RegisterSession, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.RegisterSession{}, false
	}
	userID, restID, _ := authz.UserCtx(r)
	rs, err := h.Register.Get(ctx, restID, id)
	if err != nil {
		respond.StoreError(w, h.Log, "load register session", err, mappings...)
		return models.RegisterSession{}, false
	}
	if !authz.IsAdmin(r) && rs.OpeningCashierID != userID {
		respond.Forbidden(w, "this register belongs to another cashier")
		return models.RegisterSession{}, false
	}
	return rs, true
}
