package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAppConfig() AppConfig {
	return AppConfig{
		MongoURI:              "mongodb://localhost:27017",
		MongoDatabase:         "foodgestor_test",
		SessionKey:            devSessionKey,
		SessionName:           "foodgestor-session",
		JWTSecret:             devJWTSecret,
		JWTTTL:                time.Hour,
		ResetCodeExpiry:       10 * time.Minute,
		StaleRegisterAfter:    16 * time.Hour,
		NotificationRetention: 24 * time.Hour,
		ReportTimezone:        "America/Managua",
	}
}

func TestValidateConfig(t *testing.T) {
	strong := strings.Repeat("k", 40)

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"dev defaults", "dev", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://x" }, true},
		{"empty jwt secret", "dev", func(c *AppConfig) { c.JWTSecret = "" }, true},
		{"unknown audit destination", "dev", func(c *AppConfig) { c.Audit.Cash = "file" }, true},
		{"known audit destination", "dev", func(c *AppConfig) { c.Audit = auditlog.Config{Auth: auditlog.Off, Admin: auditlog.DB} }, false},
		{"unsupported zone", "dev", func(c *AppConfig) { c.ReportTimezone = "Europe/Berlin" }, true},
		{"prod with dev secrets", "prod", func(*AppConfig) {}, true},
		{"prod with short jwt secret", "prod", func(c *AppConfig) { c.SessionKey = strong; c.JWTSecret = "short" }, true},
		{"prod with strong secrets", "prod", func(c *AppConfig) { c.SessionKey = strong; c.JWTSecret = strong }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testAppConfig()
			tc.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tc.env}, cfg, zap.NewNop())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func newTestServices(t *testing.T) (*services, DBDeps) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	s, err := newServices(&config.CoreConfig{Env: "dev"}, testAppConfig(), deps, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.stop(ctx)
	})
	return s, deps
}

func TestNewServices_SchedulesJobs(t *testing.T) {
	s, _ := newTestServices(t)

	assert.Equal(t, 3, s.scheduler.Len())
	assert.Nil(t, s.relay, "no relay without redis")
	assert.NotNil(t, s.reports)
	assert.NotNil(t, s.wsAuth.Tickets)
}

func TestRouter(t *testing.T) {
	s, deps := newTestServices(t)
	r := newRouter(s, testAppConfig(), deps, zap.NewNop())

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/health", http.StatusOK, `"database":"connected"`},
		{"GET", "/metrics", http.StatusOK, "foodgestor_"},
		{"GET", "/api/auth/me", http.StatusOK, `"isAuthenticated":false`},
		{"GET", "/api/orders/", http.StatusUnauthorized, `"error"`},
		{"GET", "/api/register/mine", http.StatusUnauthorized, `"error"`},
		{"GET", "/api/reports/sales", http.StatusUnauthorized, `"error"`},
		{"GET", "/api/settings/", http.StatusUnauthorized, `"error"`},
		{"GET", "/api/nope", http.StatusNotFound, "route not found"},
		{"POST", "/api/auth/login", http.StatusBadRequest, `"error"`},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tc.body)
			assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
		})
	}
}

func TestRequestID_KeepsValidIncomingID(t *testing.T) {
	h := requestID(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	const id = "8f14e45f-ceea-4e7a-9b1c-1f0e6b2f3c4d"
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get(requestIDHeader))
}
