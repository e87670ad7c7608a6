// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	auditlogfeature "github.com/dalemusser/foodgestor/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/foodgestor/internal/app/features/dashboard"
	employeesfeature "github.com/dalemusser/foodgestor/internal/app/features/employees"
	errorsfeature "github.com/dalemusser/foodgestor/internal/app/features/errors"
	healthfeature "github.com/dalemusser/foodgestor/internal/app/features/health"
	invoicesfeature "github.com/dalemusser/foodgestor/internal/app/features/invoices"
	loginfeature "github.com/dalemusser/foodgestor/internal/app/features/login"
	logoutfeature "github.com/dalemusser/foodgestor/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/foodgestor/internal/app/features/notifications"
	ordersfeature "github.com/dalemusser/foodgestor/internal/app/features/orders"
	productsfeature "github.com/dalemusser/foodgestor/internal/app/features/products"
	registerfeature "github.com/dalemusser/foodgestor/internal/app/features/register"
	reportsfeature "github.com/dalemusser/foodgestor/internal/app/features/reports"
	reservationsfeature "github.com/dalemusser/foodgestor/internal/app/features/reservations"
	restaurantsfeature "github.com/dalemusser/foodgestor/internal/app/features/restaurants"
	rolesfeature "github.com/dalemusser/foodgestor/internal/app/features/roles"
	settingsfeature "github.com/dalemusser/foodgestor/internal/app/features/settings"
	tablesfeature "github.com/dalemusser/foodgestor/internal/app/features/tables"
	userinfofeature "github.com/dalemusser/foodgestor/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/foodgestor/internal/app/features/users"
	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup. Every feature is mounted under /api; /health and /metrics sit
// at the root for load balancers and scrapers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("BuildHandler called before Startup")
	}
	return newRouter(svc, appCfg, deps, logger), nil
}

func newRouter(s *services, appCfg AppConfig, deps DBDeps, logger *zap.Logger) chi.Router {
	db := deps.MongoDatabase
	sm := s.sessions

	errorsHandler := errorsfeature.NewHandler(logger)

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	r.Use(requestID(logger))
	// Global auth middleware: loads SessionUser into context if a valid
	// cookie or bearer token is present.
	r.Use(sm.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	r.Route("/api", func(api chi.Router) {
		api.NotFound(errorsHandler.NotFound)
		api.MethodNotAllowed(errorsHandler.MethodNotAllowed)

		// Authentication
		loginHandler := loginfeature.NewHandler(db, sm, s.limiter, s.audit, nil, appCfg.ResetCodeExpiry, logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sm, s.audit, logger)
		api.Mount("/auth/logout", logoutfeature.Routes(logoutHandler, sm))

		// Restaurant administration
		api.Mount("/restaurants", restaurantsfeature.Routes(restaurantsfeature.NewHandler(db, s.audit, logger), sm))
		api.Mount("/settings", settingsfeature.Routes(settingsfeature.NewHandler(db, s.audit, logger), sm))
		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(db, s.audit, logger), sm))
		api.Mount("/roles", rolesfeature.Routes(rolesfeature.NewHandler(db, s.audit, logger), sm))
		api.Mount("/employees", employeesfeature.Routes(employeesfeature.NewHandler(db, logger), sm))

		// Floor and kitchen
		api.Mount("/tables", tablesfeature.Routes(tablesfeature.NewHandler(db, s.notifier, logger), sm))
		api.Mount("/products", productsfeature.Routes(productsfeature.NewHandler(db, s.notifier, logger), sm))
		api.Mount("/orders", ordersfeature.Routes(ordersfeature.NewHandler(db, s.notifier, logger), sm))
		api.Mount("/reservations", reservationsfeature.Routes(reservationsfeature.NewHandler(db, s.notifier, logger), sm))
		api.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(db, s.hub, s.wsAuth, logger), sm))

		// Cash
		api.Mount("/invoices", invoicesfeature.Routes(invoicesfeature.NewHandler(db, s.reports, s.audit, logger), sm))
		api.Mount("/register", registerfeature.Routes(registerfeature.NewHandler(db, s.audit, s.reports.Location(), logger), sm))

		// Reporting
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(s.reports, logger), sm))
		api.Mount("/reports", reportsfeature.Routes(reportsfeature.NewHandler(s.reports, logger), sm))
		api.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(db, logger), sm))
	})

	return r
}
