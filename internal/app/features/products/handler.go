// internal/app/features/products/handler.go
package products

import (
	"context"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	productstore "github.com/dalemusser/foodgestor/internal/app/store/products"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the menu.
type Handler struct {
	DB       *mongo.Database
	Products *productstore.Store
	Notifier *notify.Service
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, notifier *notify.Service, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Products: productstore.New(db), Notifier: notifier, Log: logger}
}

var (
	notFound  = respond.Mapping{Err: productstore.ErrNotFound, Status: http.StatusNotFound}
	duplicate = respond.Mapping{Err: productstore.ErrDuplicateNumber, Status: http.StatusConflict}
)

func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.StoreError(w, h.Log, "parse id", err)
		return models.Product{}, false
	}
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		respond.StoreError(w, h.Log, "get product", err, notFound)
		return models.Product{}, false
	}
	if !authz.CanAccessRestaurant(r, p.RestaurantID) {
		respond.NotFound(w, productstore.ErrNotFound.Error())
		return models.Product{}, false
	}
	return p, true
}
