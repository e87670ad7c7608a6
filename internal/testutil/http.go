package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/foodgestor/internal/app/system/auth"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID           string
	RestaurantID string
	Username     string
	Email        string
	Admin        bool
	Access       models.Access
}

// AdminUser returns a restaurant administrator.
func AdminUser(restaurantID primitive.ObjectID) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		RestaurantID: restaurantID.Hex(),
		Username:     "admin",
		Email:        "admin@test.com",
		Admin:        true,
	}
}

// CashierUser returns a user whose role grants the cash area only.
func CashierUser(restaurantID primitive.ObjectID) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		RestaurantID: restaurantID.Hex(),
		Username:     "cashier",
		Email:        "cashier@test.com",
		Access:       models.Access{Cash: true},
	}
}

// WaiterUser returns a user whose role grants the orders area only.
func WaiterUser(restaurantID primitive.ObjectID) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		RestaurantID: restaurantID.Hex(),
		Username:     "waiter",
		Email:        "waiter@test.com",
		Access:       models.Access{Orders: true},
	}
}

// FromUser builds a TestUser from a stored user.
func FromUser(u models.User, access models.Access) TestUser {
	return TestUser{
		ID:           u.ID.Hex(),
		RestaurantID: u.RestaurantID.Hex(),
		Username:     u.Username,
		Email:        u.Email,
		Admin:        u.IsAdmin(),
		Access:       access,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:           user.ID,
		RestaurantID: user.RestaurantID,
		Username:     user.Username,
		Email:        user.Email,
		Admin:        user.Admin,
		Access:       user.Access,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(method, target string, v any) *http.Request {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		panic(err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// AssertNotContains checks that the response body does not contain s.
func (r *ResponseRecorder) AssertNotContains(t interface{ Errorf(string, ...any) }, s string) {
	if strings.Contains(r.Body.String(), s) {
		t.Errorf("response body unexpectedly contains %q", s)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}
