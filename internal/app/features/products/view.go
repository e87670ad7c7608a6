// internal/app/features/products/view.go
package products

import (
	"context"
	"net/http"

	productstore "github.com/dalemusser/foodgestor/internal/app/store/products"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
)

// ServeList handles GET /api/products?category=&available=true.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Products.ListByRestaurant(ctx, restID, productstore.ListFilter{
		Category:      formutil.Query(r, "category"),
		AvailableOnly: formutil.Query(r, "available") == "true",
	})
	if err != nil {
		respond.StoreError(w, h.Log, "list products", err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if p, ok := h.load(ctx, w, r); ok {
		respond.OK(w, p)
	}
}
