package login_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/features/login"
	auditstore "github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/auditlog"
	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/app/system/ratelimit"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/foodgestor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type captureSender struct {
	mu     sync.Mutex
	codes  map[string]string
	byUser map[primitive.ObjectID]string
}

func (c *captureSender) SendResetCode(_ context.Context, u models.User, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.codes == nil {
		c.codes = map[string]string{}
		c.byUser = map[primitive.ObjectID]string{}
	}
	c.codes[u.Email] = code
	c.byUser[u.ID] = code
	return nil
}

func (c *captureSender) codeFor(id primitive.ObjectID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byUser[id]
}

func (c *captureSender) code(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

type env struct {
	handler  *login.Handler
	fixtures *testutil.Fixtures
	db       *mongo.Database
	sm       *auth.SessionManager
	sender   *captureSender
}

func newEnv(t *testing.T, limiter *ratelimit.LoginLimiter) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(auth.Config{
		SessionKey: "test-session-key-for-testing-only-0123456789",
		JWTSecret:  "test-jwt-secret",
	}, nil, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{})
	sender := &captureSender{}
	h := login.NewHandler(db, sm, limiter, audit, sender, 10*time.Minute, logger)
	return &env{handler: h, fixtures: testutil.NewFixtures(t, db), db: db, sm: sm, sender: sender}
}

func (e *env) post(handler http.HandlerFunc, body any) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	handler(rec, testutil.NewJSONRequest("POST", "/api/auth/x", body))
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := e.fixtures.CreateRestaurant(ctx, 12, "La Fonda")
	role := e.fixtures.CreateRole(ctx, rest.ID, "Caja", models.Access{Cash: true})
	u := e.fixtures.CreateUser(ctx, rest.ID, "maria", "maria@example.com", &role.ID)

	rec := e.post(e.handler.HandleLogin, map[string]string{
		"identifier":      "MARIA",
		"password":        "password",
		"restaurant_code": "rest12",
	})
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		User       models.User   `json:"user"`
		Admin      bool          `json:"admin"`
		Access     models.Access `json:"access"`
		Token      string        `json:"token"`
		Restaurant struct {
			Number int `json:"number"`
		} `json:"restaurant"`
	}
	rec.DecodeJSON(t, &body)

	if body.User.ID != u.ID || body.Admin || !body.Access.Cash || body.Access.Orders {
		t.Errorf("unexpected login body: %+v", body)
	}
	if body.Restaurant.Number != 12 {
		t.Errorf("restaurant number = %d, want 12", body.Restaurant.Number)
	}
	rec.AssertContains(t, `"user"`)
	if got := rec.Body.String(); strings.Contains(got, "password_hash") || strings.Contains(got, "$2a$") {
		t.Error("password hash must never be serialized")
	}

	claims, err := e.sm.ParseToken(body.Token)
	if err != nil {
		t.Fatalf("returned token does not parse: %v", err)
	}
	if claims.Subject != u.ID.Hex() || claims.RestaurantID != rest.ID.Hex() {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestHandleLogin_Failures(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := e.fixtures.CreateRestaurant(ctx, 3, "El Patio")
	e.fixtures.CreateUser(ctx, rest.ID, "jose", "jose@example.com", nil)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing password", map[string]string{"identifier": "jose"}, http.StatusBadRequest},
		{"malformed code", map[string]string{"identifier": "jose", "password": "password", "restaurant_code": "SHOP3"}, http.StatusBadRequest},
		{"unknown restaurant", map[string]string{"identifier": "jose", "password": "password", "restaurant_code": "REST999"}, http.StatusNotFound},
		{"unknown user", map[string]string{"identifier": "nobody", "password": "password"}, http.StatusUnauthorized},
		{"wrong password", map[string]string{"identifier": "jose", "password": "nope"}, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e.post(e.handler.HandleLogin, tc.body).AssertStatus(t, tc.want)
		})
	}

	n, err := auditstore.New(e.db).CountByFilter(ctx, auditstore.QueryFilter{Category: auditstore.CategoryAuth})
	if err != nil || n < 2 {
		t.Errorf("expected failed logins to be audited, got %d (%v)", n, err)
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(100, 2)
	defer limiter.Stop()
	e := newEnv(t, limiter)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := e.fixtures.CreateRestaurant(ctx, 4, "Doña Tina")
	e.fixtures.CreateUser(ctx, rest.ID, "ana", "ana@example.com", nil)

	bad := map[string]string{"identifier": "ana", "password": "wrong"}
	e.post(e.handler.HandleLogin, bad).AssertStatus(t, http.StatusUnauthorized)
	e.post(e.handler.HandleLogin, bad).AssertStatus(t, http.StatusUnauthorized)
	e.post(e.handler.HandleLogin, bad).AssertStatus(t, http.StatusTooManyRequests)
}

func TestHandleLogin_DisabledUser(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := e.fixtures.CreateRestaurant(ctx, 5, "Cocina")
	u := e.fixtures.CreateUser(ctx, rest.ID, "luis", "luis@example.com", nil)
	if _, err := e.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"active": false}}); err != nil {
		t.Fatal(err)
	}

	e.post(e.handler.HandleLogin, map[string]string{"identifier": "luis", "password": "password"}).
		AssertStatus(t, http.StatusForbidden)
}

func TestForgotAndReset(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := e.fixtures.CreateRestaurant(ctx, 6, "Fritanga")
	e.fixtures.CreateUser(ctx, rest.ID, "rosa", "rosa@example.com", nil)

	// unknown emails get the same answer
	e.post(e.handler.HandleForgot, map[string]string{"email": "ghost@example.com"}).AssertStatus(t, http.StatusOK)

	e.post(e.handler.HandleForgot, map[string]string{"email": "Rosa@Example.com"}).AssertStatus(t, http.StatusOK)
	code := e.sender.code("rosa@example.com")
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	e.post(e.handler.HandleReset, map[string]string{
		"email": "rosa@example.com", "code": wrong, "new_password": "newpass1",
	}).AssertStatus(t, http.StatusBadRequest)

	e.post(e.handler.HandleReset, map[string]string{
		"email": "rosa@example.com", "code": code, "new_password": "newpass1",
	}).AssertStatus(t, http.StatusOK)

	e.post(e.handler.HandleLogin, map[string]string{"identifier": "rosa", "password": "newpass1"}).
		AssertStatus(t, http.StatusOK)
	e.post(e.handler.HandleLogin, map[string]string{"identifier": "rosa", "password": "password"}).
		AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleReset_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(100, 3)
	defer limiter.Stop()
	e := newEnv(t, limiter)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rest := e.fixtures.CreateRestaurant(ctx, 7, "Comedor Rivas")
	e.fixtures.CreateUser(ctx, rest.ID, "mario", "mario@example.com", nil)

	e.post(e.handler.HandleForgot, map[string]string{"email": "mario@example.com"}).AssertStatus(t, http.StatusOK)
	code := e.sender.code("mario@example.com")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	guess := func(c string) *testutil.ResponseRecorder {
		return e.post(e.handler.HandleReset, map[string]string{
			"email": "mario@example.com", "code": c, "new_password": "newpass1",
		})
	}
	guess(wrong).AssertStatus(t, http.StatusBadRequest)
	guess(wrong).AssertStatus(t, http.StatusBadRequest)
	guess(wrong).AssertStatus(t, http.StatusTooManyRequests)
	// the right code is refused too until the window passes
	guess(code).AssertStatus(t, http.StatusTooManyRequests)

	e.post(e.handler.HandleLogin, map[string]string{"identifier": "mario", "password": "password"}).
		AssertStatus(t, http.StatusOK)
}

func TestForgotAndReset_SharedEmail(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	restA := e.fixtures.CreateRestaurant(ctx, 8, "Fritanga Norte")
	restB := e.fixtures.CreateRestaurant(ctx, 9, "Fritanga Sur")
	a := e.fixtures.CreateUser(ctx, restA.ID, "lucia", "lucia@example.com", nil)
	b := e.fixtures.CreateUser(ctx, restB.ID, "lucia", "lucia@example.com", nil)

	e.post(e.handler.HandleForgot, map[string]string{"email": "lucia@example.com"}).AssertStatus(t, http.StatusOK)
	codeA, codeB := e.sender.codeFor(a.ID), e.sender.codeFor(b.ID)
	if len(codeA) != 6 || len(codeB) != 6 {
		t.Fatalf("each account needs a code, got %q and %q", codeA, codeB)
	}

	e.post(e.handler.HandleReset, map[string]string{
		"email": "lucia@example.com", "code": codeB, "new_password": "sur-pass",
	}).AssertStatus(t, http.StatusOK)
	e.post(e.handler.HandleLogin, map[string]string{"identifier": "lucia", "password": "sur-pass", "restaurant_code": "REST9"}).
		AssertStatus(t, http.StatusOK)
	e.post(e.handler.HandleLogin, map[string]string{"identifier": "lucia", "password": "password", "restaurant_code": "REST8"}).
		AssertStatus(t, http.StatusOK)

	// a code is only good in its own restaurant
	if codeA != codeB {
		e.post(e.handler.HandleReset, map[string]string{
			"email": "lucia@example.com", "restaurant_code": "REST9", "code": codeA, "new_password": "x-pass",
		}).AssertStatus(t, http.StatusBadRequest)
	}
	e.post(e.handler.HandleReset, map[string]string{
		"email": "lucia@example.com", "restaurant_code": "REST8", "code": codeA, "new_password": "norte-pass",
	}).AssertStatus(t, http.StatusOK)

	e.post(e.handler.HandleForgot, map[string]string{"email": "lucia@example.com", "restaurant_code": "REST77"}).
		AssertStatus(t, http.StatusNotFound)
	e.post(e.handler.HandleForgot, map[string]string{"email": "lucia@example.com", "restaurant_code": "X9"}).
		AssertStatus(t, http.StatusBadRequest)
}
