// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes serves the public auth endpoints, mounted under /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	r.Post("/forgot-password", h.HandleForgot)
	r.Post("/reset-password", h.HandleReset)
	return r
}
