// internal/app/features/invoices/routes.go
package invoices

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(authz.RequireAccess(models.AccessCash))

	r.Get("/", h.ServeList)
	r.Get("/today", h.ServeToday)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Get("/{id}/receipt", h.ServeReceipt)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAdmin)
		r.Put("/{id}", h.HandleEdit)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
