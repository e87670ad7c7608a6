// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, CORS and body limits.
// Everything below is foodgestor's own.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Cookie session
	SessionKey    string // signs session cookies and WebSocket tickets
	SessionName   string
	SessionDomain string

	// API tokens
	JWTSecret string
	JWTTTL    time.Duration

	ResetCodeExpiry time.Duration

	// Optional; enables cross-instance notification fan-out.
	RedisURL string

	Audit auditlog.Config

	// Store-call budgets; zero keeps the built-in default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Scheduled jobs
	StaleRegisterAfter    time.Duration
	NotificationRetention time.Duration

	LoginIPLimit         int
	LoginIdentifierLimit int

	// Zone that defines "today", weeks and months in reports.
	ReportTimezone string
}
