// internal/app/features/orders/routes.go
package orders

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireAccess(models.AccessOrders, models.AccessKitchen, models.AccessCash))
		pr.Get("/", h.ServeList)
		pr.Get("/pending", h.ServePending)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}", h.HandleEdit)
	})

	r.With(authz.RequireAccess(models.AccessOrders)).Post("/", h.HandleCreate)
	r.With(authz.RequireAdmin).Delete("/{id}", h.HandleDelete)
	return r
}
