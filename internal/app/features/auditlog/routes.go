// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log, typically at "/api/audit". Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(authz.RequireAdmin)

		pr.Get("/", h.ServeList)
		pr.Get("/categories", h.ServeCategories)
	})
	return r
}
