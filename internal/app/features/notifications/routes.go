// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// the handshake authenticates itself
	r.Get("/ws", h.ServeWS)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Delete("/", h.HandleDeleteAll)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/ws-ticket", h.HandleTicket)
	})
	return r
}
