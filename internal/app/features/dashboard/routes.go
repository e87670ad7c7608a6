// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard under whatever mount point the top-level
// router chooses (e.g., "/api/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/stats", h.ServeStats)
		pr.Get("/recent-orders", h.ServeRecentOrders)
	})
	return r
}
