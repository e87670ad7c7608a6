// internal/app/features/restaurants/routes.go
package restaurants

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)

		pr.Group(func(ar chi.Router) {
			ar.Use(authz.RequireAdmin)
			ar.Put("/{id}", h.HandleEdit)
			ar.Delete("/{id}", h.HandleDelete)
		})
	})

	return r
}
