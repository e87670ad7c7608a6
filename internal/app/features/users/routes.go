// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// both handlers check the caller themselves
	r.Post("/", h.HandleCreate)
	r.Get("/check-availability", h.ServeAvailability)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}", h.HandleEdit)

		pr.Group(func(ar chi.Router) {
			ar.Use(authz.RequireAdmin)
			ar.Get("/", h.ServeList)
			ar.Delete("/{id}", h.HandleDelete)
		})
	})

	return r
}
