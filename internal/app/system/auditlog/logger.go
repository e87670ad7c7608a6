// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	All = "all" // MongoDB and zap
	DB  = "db"
	Log = "log"
	Off = "off"
)

// Config picks a destination per category. Empty means All.
type Config struct {
	Auth  string
	Admin string
	Cash  string
}

// Recorder is where events are persisted.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to the store and/or zap.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) destination(category string) string {
	var d string
	switch category {
	case audit.CategoryAuth:
		d = l.config.Auth
	case audit.CategoryAdmin:
		d = l.config.Admin
	case audit.CategoryCash:
		d = l.config.Cash
	}
	if d == "" {
		return All
	}
	return d
}

// Log records event. A nil Logger does nothing.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	dest := l.destination(event.Category)
	if dest == Off {
		return
	}
	if dest == All || dest == Log {
		l.toZap(event)
	}
	if (dest == All || dest == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event", zap.Error(err), zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) toZap(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	if e.RestaurantID != nil {
		fields = append(fields, zap.String("restaurant_id", e.RestaurantID.Hex()))
	}
	if e.UserID != nil {
		fields = append(fields, zap.String("user_id", e.UserID.Hex()))
	}
	if e.ActorID != nil {
		fields = append(fields, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func base(r *http.Request, category, eventType string, restID *primitive.ObjectID) audit.Event {
	e := audit.Event{Category: category, EventType: eventType, RestaurantID: restID, Success: true}
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// --- auth ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, restID *primitive.ObjectID, identifier string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess, restID)
	e.UserID = &userID
	e.Details = map[string]string{"identifier": identifier}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, restID *primitive.ObjectID, identifier string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, restID)
	e.Success = false
	e.FailureReason = "user not found"
	e.Details = map[string]string{"identifier": identifier}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, restID *primitive.ObjectID, identifier string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, restID)
	e.UserID = &userID
	e.Success = false
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"identifier": identifier}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, restID *primitive.ObjectID, identifier string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedUserDisabled, restID)
	e.UserID = &userID
	e.Success = false
	e.FailureReason = "user disabled"
	e.Details = map[string]string{"identifier": identifier}
	l.Log(ctx, e)
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, identifier string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, nil)
	e.Success = false
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"identifier": identifier}
	l.Log(ctx, e)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID, restID *primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventLogout, restID)
	e.UserID = &userID
	l.Log(ctx, e)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID, restID *primitive.ObjectID, via string) {
	e := base(r, audit.CategoryAuth, audit.EventPasswordChanged, restID)
	e.UserID = &userID
	e.Details = map[string]string{"via": via}
	l.Log(ctx, e)
}

func (l *Logger) ResetCodeIssued(ctx context.Context, r *http.Request, userID primitive.ObjectID, restID *primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventResetCodeIssued, restID)
	e.UserID = &userID
	l.Log(ctx, e)
}

func (l *Logger) ResetCodeFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventResetCodeFailed, nil)
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// --- admin ---

// Admin records a CRUD action by actor on a restaurant-scoped record.
// subject is the affected user, if any.
func (l *Logger) Admin(ctx context.Context, r *http.Request, eventType string, actor *primitive.ObjectID, restID primitive.ObjectID, subject *primitive.ObjectID, details map[string]string) {
	e := base(r, audit.CategoryAdmin, eventType, &restID)
	e.ActorID = actor
	e.UserID = subject
	e.Details = details
	l.Log(ctx, e)
}

func (l *Logger) CurrencyChanged(ctx context.Context, r *http.Request, actor *primitive.ObjectID, restID primitive.ObjectID, fromCode string, fromRate float64, toCode string, toRate float64) {
	l.Admin(ctx, r, audit.EventCurrencyChanged, actor, restID, nil, map[string]string{
		"from_currency": fromCode,
		"from_rate":     money(fromRate),
		"to_currency":   toCode,
		"to_rate":       money(toRate),
	})
}

// --- cash ---

func (l *Logger) InvoiceCreated(ctx context.Context, r *http.Request, actor *primitive.ObjectID, restID primitive.ObjectID, invoiceID primitive.ObjectID, number, code string, total float64) {
	e := base(r, audit.CategoryCash, audit.EventInvoiceCreated, &restID)
	e.ActorID = actor
	e.Details = map[string]string{
		"invoice_id": invoiceID.Hex(),
		"number":     number,
		"currency":   code,
		"total":      money(total),
	}
	l.Log(ctx, e)
}

func (l *Logger) RegisterOpened(ctx context.Context, r *http.Request, cashierID, restID, sessionID primitive.ObjectID, float float64, code string) {
	e := base(r, audit.CategoryCash, audit.EventRegisterOpened, &restID)
	e.UserID = &cashierID
	e.Details = map[string]string{
		"session_id":    sessionID.Hex(),
		"opening_float": money(float),
		"currency":      code,
	}
	l.Log(ctx, e)
}

func (l *Logger) RegisterOpenFailed(ctx context.Context, r *http.Request, cashierID, restID primitive.ObjectID, reason string) {
	e := base(r, audit.CategoryCash, audit.EventRegisterOpenFail, &restID)
	e.UserID = &cashierID
	e.Success = false
	e.FailureReason = reason
	l.Log(ctx, e)
}

func (l *Logger) RegisterClosed(ctx context.Context, r *http.Request, cashierID, restID, sessionID primitive.ObjectID, expected, actual, difference float64, deviation string) {
	e := base(r, audit.CategoryCash, audit.EventRegisterClosed, &restID)
	e.UserID = &cashierID
	e.Details = map[string]string{
		"session_id": sessionID.Hex(),
		"expected":   money(expected),
		"actual":     money(actual),
		"difference": money(difference),
		"deviation":  deviation,
	}
	l.Log(ctx, e)
}
