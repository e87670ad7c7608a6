// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes serves /api/settings. Everyone signed in may read the pricing
// settings; only administrators change them.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeSettings)
		pr.Get("/timezones", h.ServeTimezones)
		pr.With(authz.RequireAdmin).Put("/", h.HandleUpdate)
	})
	return r
}
