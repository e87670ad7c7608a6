// internal/app/features/orders/handler.go
package orders

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	employeestore "github.com/dalemusser/foodgestor/internal/app/store/employees"
	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	productstore "github.com/dalemusser/foodgestor/internal/app/store/products"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB        *mongo.Database
	Orders    *orderstore.Store
	Products  *productstore.Store
	Tables    *tablestore.Store
	Employees *employeestore.Store
	Notifier  *notify.Service
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, notifier *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Orders:    orderstore.New(db),
		Products:  productstore.New(db),
		Tables:    tablestore.New(db),
		Employees: employeestore.New(db),
		Notifier:  notifier,
		Log:       logger,
	}
}

var (
	notFound  = respond.Mapping{Err: orderstore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: orderstore.ErrDuplicateNumber, Status: http.StatusConflict}
)

func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Order, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.Order{}, false
	}
	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get order", err, notFound)
		return models.Order{}, false
	}
	if !authz.CanAccessRestaurant(r, o.RestaurantID) {
		respond.NotFound(w, orderstore.ErrNotFound.Error())
		return models.Order{}, false
	}
	return o, true
}
