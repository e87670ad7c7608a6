// internal/app/features/employees/routes.go
package employees

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(ar chi.Router) {
		ar.Use(authz.RequireAdmin)
		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleEdit)
		ar.Delete("/{id}", h.HandleDelete)
	})
	return r
}
