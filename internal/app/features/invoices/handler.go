// internal/app/features/invoices/handler.go
package invoices

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/invoicing"
	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves invoices. Creation goes through the invoicing service so
// the currency regime is frozen at issue time.
type Handler struct {
	Invoices    *invoicestore.Store
	Invoicing   *invoicing.Service
	Reports     *reporting.Service
	Restaurants *restaurantstore.Store
	Orders      *orderstore.Store
	Users       *userstore.Store
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler wires the stores over db. reports carries the business time
// zone and is shared with the dashboard.
func NewHandler(db *mongo.Database, reports *reporting.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	invoices := invoicestore.New(db)
	restaurants := restaurantstore.New(db)
	return &Handler{
		Invoices:    invoices,
		Invoicing:   invoicing.New(restaurants, invoices, logger),
		Reports:     reports,
		Restaurants: restaurants,
		Orders:      orderstore.New(db),
		Users:       userstore.New(db),
		AuditLog:    audit,
		Log:         logger,
	}
}

var (
	notFound     = respond.Mapping{Err: invoicing.ErrNotFound, Status: http.StatusNotFound}
	duplicate    = respond.Mapping{Err: invoicing.ErrDuplicateNumber, Status: http.StatusConflict, Message: "invoice number already in use, try again"}
	noRestaurant = respond.Mapping{Err: invoicing.ErrRestaurantNotFound, Status: http.StatusNotFound}
)

// load fetches {id} within the caller's restaurant.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Invoice, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.Invoice{}, false
	}
	_, restID, _ := authz.UserCtx(r)
	inv, err := h.Invoices.GetByID(ctx, restID, id)
	if err != nil {
		respond.StoreError(w, h.Log, "load invoice", err, notFound)
		return models.Invoice{}, false
	}
	return inv, true
}

// checkOrder verifies that the invoiced order belongs to the restaurant.
func (h *Handler) checkOrder(ctx context.Context, restaurantID, orderID primitive.ObjectID) error {
	if orderID.IsZero() {
		return nil
	}
	o, err := h.Orders.GetByID(ctx, orderID)
	if errors.Is(err, orderstore.ErrNotFound) || (err == nil && o.RestaurantID != restaurantID) {
		return inputval.Invalid("order_id", "Order not found.")
	}
	return err
}
