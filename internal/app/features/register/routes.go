// internal/app/features/register/routes.go
package register

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
	r.Get("/mine", h.ServeMine)
	r.Get("/open", h.ServeHasOpen)
	r.Post("/open", h.HandleOpen)
	r.Get("/{id}", h.ServeView)
	r.Get("/{id}/preclose", h.ServePreClose)
	r.Post("/{id}/close", h.HandleClose)
	return r
}
