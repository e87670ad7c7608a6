// internal/app/features/products/routes.go
package products

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	// the kitchen marks dishes sold out
	r.With(authz.RequireAccess(models.AccessKitchen, models.AccessOrders)).
		Patch("/{id}/available", h.HandleAvailability)

	r.Group(func(ar chi.Router) {
		ar.Use(authz.RequireAdmin)
		ar.Post("/", h.HandleCreate)
		ar.Post("/import", h.HandleImport)
		ar.Put("/{id}", h.HandleEdit)
		ar.Delete("/{id}", h.HandleDelete)
	})
	return r
}
