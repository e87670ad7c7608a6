// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devJWTSecret  = "dev-only-jwt-secret"
)

// appConfigKeys defines the configuration keys for foodgestor.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: FOODGESTOR_MONGO_URI, FOODGESTOR_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "foodgestor", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "foodgestor-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// API tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 secret for API bearer tokens"},
	{Name: "jwt_ttl", Default: "12h", Desc: "Bearer token lifetime (e.g., 12h, 30m)"},

	{Name: "reset_code_expiry", Default: "10m", Desc: "Password reset code expiry"},

	{Name: "redis_url", Default: "", Desc: "Redis URL for cross-instance notifications (blank disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_cash", Default: "all", Desc: "Register and invoice event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Budget for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Budget for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Budget for reports and exports"},

	// Scheduled jobs
	{Name: "stale_register_after", Default: "16h", Desc: "Age after which an open register is reported as stale"},
	{Name: "notification_retention", Default: "720h", Desc: "How long notifications are kept"},

	// Login rate limits
	{Name: "login_ip_limit", Default: 20, Desc: "Login attempts per IP per minute"},
	{Name: "login_identifier_limit", Default: 5, Desc: "Login attempts per identifier per 5 minutes"},

	{Name: "report_timezone", Default: "America/Managua", Desc: "IANA zone for report periods"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// FOODGESTOR_* environment variables and flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FOODGESTOR", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 12*time.Hour),

		ResetCodeExpiry: appValues.Duration("reset_code_expiry", 10*time.Minute),

		RedisURL: appValues.String("redis_url"),

		Audit: auditlog.Config{
			Auth:  appValues.String("audit_log_auth"),
			Admin: appValues.String("audit_log_admin"),
			Cash:  appValues.String("audit_log_cash"),
		},

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),

		StaleRegisterAfter:    appValues.Duration("stale_register_after", 16*time.Hour),
		NotificationRetention: appValues.Duration("notification_retention", 30*24*time.Hour),

		LoginIPLimit:         appValues.Int("login_ip_limit"),
		LoginIdentifierLimit: appValues.Int("login_identifier_limit"),

		ReportTimezone: appValues.String("report_timezone"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The Mongo URI is checked up front so a typo fails before connecting.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret must be set")
	}
	for name, v := range map[string]string{
		"audit_log_auth":  appCfg.Audit.Auth,
		"audit_log_admin": appCfg.Audit.Admin,
		"audit_log_cash":  appCfg.Audit.Cash,
	} {
		switch v {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s: unknown destination %q", name, v)
		}
	}
	if _, err := timezones.Load(appCfg.ReportTimezone); err != nil {
		return fmt.Errorf("report_timezone: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey || len(appCfg.SessionKey) < 32 {
			return errors.New("session_key must be a private value of at least 32 characters in prod")
		}
		if appCfg.JWTSecret == devJWTSecret || len(appCfg.JWTSecret) < 32 {
			return errors.New("jwt_secret must be a private value of at least 32 characters in prod")
		}
	}
	return nil
}
