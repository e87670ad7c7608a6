package logout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/foodgestor/internal/app/features/logout"
	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type auditRecorder struct{ events []audit.Event }

func (m *auditRecorder) Log(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager(auth.Config{
		SessionKey: "test-session-key-for-testing-only-0123456789",
		JWTSecret:  "test-jwt-secret",
	}, nil, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	// a nil audit logger is a no-op
	return logout.NewHandler(sessionMgr, nil, logger), sessionMgr
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler, _ := newTestHandler(t)
	user := testutil.AdminUser(primitive.NewObjectID())

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, testutil.NewAuthenticatedRequest("POST", "/api/auth/logout", user))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	set := rec.Header().Get("Set-Cookie")
	if !strings.Contains(set, "Max-Age=0") && !strings.Contains(set, "Max-Age=-1") {
		t.Errorf("expected an expiring cookie, got %q", set)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	handler, sm := newTestHandler(t)
	router := logout.Routes(handler, sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestServeLogout_Audited(t *testing.T) {
	_, sm := newTestHandler(t)
	rec := &auditRecorder{}
	handler := logout.NewHandler(sm, auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: auditlog.DB}), zap.NewNop())
	user := testutil.CashierUser(primitive.NewObjectID())

	handler.ServeLogout(httptest.NewRecorder(), testutil.NewAuthenticatedRequest("POST", "/api/auth/logout", user))

	if len(rec.events) != 1 || rec.events[0].EventType != audit.EventLogout {
		t.Fatalf("expected one logout event, got %+v", rec.events)
	}
	if rec.events[0].UserID == nil || rec.events[0].UserID.Hex() != user.ID {
		t.Errorf("event user = %v, want %s", rec.events[0].UserID, user.ID)
	}
}
