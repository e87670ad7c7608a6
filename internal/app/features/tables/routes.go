// internal/app/features/tables/routes.go
package tables

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

	// waiters seat and free tables
	r.With(authz.RequireAccess(models.AccessOrders, models.AccessCash)).Put("/{id}", h.HandleEdit)

	r.Group(func(ar chi.Router) {
		ar.Use(authz.RequireAdmin)
		ar.Post("/", h.HandleCreate)
		ar.Delete("/{id}", h.HandleDelete)
	})
	return r
}
