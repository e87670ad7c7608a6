// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/services/notify"
	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	auditstore "github.com/dalemusser/foodgestor/internal/app/store/audit"
	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	notificationstore "github.com/dalemusser/foodgestor/internal/app/store/notifications"
	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	tablestore "github.com/dalemusser/foodgestor/internal/app/store/tables"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/ratelimit"
	"github.com/dalemusser/foodgestor/internal/app/system/tasks"
	"github.com/dalemusser/foodgestor/internal/app/system/timezones"
	"github.com/dalemusser/foodgestor/internal/app/system/workers"
	"github.com/dalemusser/foodgestor/internal/app/system/wsauth"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

const wsTicketTTL = time.Minute

// services are the long-lived objects shared by Startup, BuildHandler and
// Shutdown. WAFFLE hands each hook only config and deps, so they live here.
type services struct {
	sessions  *auth.SessionManager
	users     *userstore.Fetcher
	audit     *auditlog.Logger
	hub       *notify.Hub
	notifier  *notify.Service
	reports   *reporting.Service
	wsAuth    *wsauth.Authenticator
	limiter   *ratelimit.LoginLimiter
	scheduler *tasks.Scheduler
	relay     *workers.NotifyRelay
}

var svc *services

// Startup builds shared services and starts background work: the cron
// scheduler and, with Redis configured, the notification relay.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	s, err := newServices(coreCfg, appCfg, deps, logger)
	if err != nil {
		return err
	}
	if s.relay != nil {
		s.relay.Start(5 * time.Second)
	}
	s.scheduler.Start()
	svc = s
	return nil
}

func newServices(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	db := deps.MongoDatabase
	s := &services{users: userstore.NewFetcher(db)}

	secure := coreCfg != nil && coreCfg.Env == "prod"
	sm, err := auth.NewSessionManager(auth.Config{
		SessionKey:  appCfg.SessionKey,
		SessionName: appCfg.SessionName,
		Domain:      appCfg.SessionDomain,
		Secure:      secure,
		JWTSecret:   appCfg.JWTSecret,
		JWTTTL:      appCfg.JWTTTL,
	}, s.users, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	s.sessions = sm

	s.audit = auditlog.New(auditstore.New(db), logger, appCfg.Audit)

	s.hub = notify.NewHub(logger, nil)
	var bus notify.Bus = notify.LocalBus{Hub: s.hub}
	if deps.Redis != nil {
		rb := notify.NewRedisBus(deps.Redis, s.hub, logger)
		bus = rb
		s.relay = workers.NewNotifyRelay(rb, logger, 2*time.Second)
	}
	notifications := notificationstore.New(db)
	s.notifier = notify.NewService(notifications, bus, logger)

	s.wsAuth = &wsauth.Authenticator{
		Tickets:  wsauth.NewTickets([]byte(appCfg.SessionKey), wsTicketTTL),
		Sessions: sm,
		Users:    s.users,
	}

	loc, err := timezones.Load(appCfg.ReportTimezone)
	if err != nil {
		return nil, err
	}
	s.reports = reporting.New(
		restaurantstore.New(db),
		invoicestore.New(db),
		orderstore.New(db),
		tablestore.New(db),
		registerstore.New(db),
		logger,
		reporting.WithLocation(loc),
	)

	s.limiter = ratelimit.NewLoginLimiter(appCfg.LoginIPLimit, appCfg.LoginIdentifierLimit)

	s.scheduler = tasks.NewScheduler(logger)
	for _, job := range []tasks.Job{
		tasks.StaleRegisterCheckJob(registerstore.New(db), logger, appCfg.StaleRegisterAfter),
		tasks.NotificationPruneJob(notifications, logger, appCfg.NotificationRetention),
		tasks.ResetCodeCleanupJob(userstore.New(db), logger),
	} {
		if err := s.scheduler.Add(job); err != nil {
			return nil, fmt.Errorf("schedule jobs: %w", err)
		}
	}
	return s, nil
}

// stop halts background work. Safe on a partially built value.
func (s *services) stop(ctx context.Context) {
	if s == nil {
		return
	}
	if s.scheduler != nil {
		s.scheduler.Stop(ctx)
	}
	if s.relay != nil {
		s.relay.Stop()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
