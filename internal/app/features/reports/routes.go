// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(authz.RequireAccess(models.AccessReports))

	r.Get("/info", h.ServeInfo)
	r.Get("/sales", h.ServeSales)
	r.Get("/sales.xlsx", h.ServeSalesXLSX)
	r.Get("/register", h.ServeRegister)
	r.Get("/register.xlsx", h.ServeRegisterXLSX)
	return r
}
