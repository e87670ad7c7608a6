package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db  *mongo.Database
	t   *testing.T
	seq map[string]int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t, seq: map[string]int{}}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// next hands out per-collection numbers so unique (restaurant_id, number)
// indexes are satisfied.
func (f *Fixtures) next(coll string) int {
	f.seq[coll]++
	return f.seq[coll]
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateRestaurant creates a restaurant with default settings.
func (f *Fixtures) CreateRestaurant(ctx context.Context, number int, name string) models.Restaurant {
	f.t.Helper()
	return f.CreateRestaurantWithRegime(ctx, number, name, currency.DefaultCode, currency.DefaultRate)
}

// CreateRestaurantWithRegime creates a restaurant priced in code at rate.
func (f *Fixtures) CreateRestaurantWithRegime(ctx context.Context, number int, name string, code currency.Code, rate float64) models.Restaurant {
	f.t.Helper()

	now := time.Now().UTC()
	settings := models.DefaultSettings()
	settings.Currency = code
	settings.ExchangeRate = rate
	r := models.Restaurant{
		ID:        primitive.NewObjectID(),
		Number:    number,
		Name:      name,
		NameCI:    text.Fold(name),
		Address:   "Test Street 1",
		Phone:     "555-0100",
		Tables:    10,
		Services:  models.Services{TableService: true},
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "restaurants", r)
	return r
}

// CreateRole creates an active role with the given access.
func (f *Fixtures) CreateRole(ctx context.Context, restaurantID primitive.ObjectID, name string, access models.Access) models.Role {
	f.t.Helper()

	now := time.Now().UTC()
	role := models.Role{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		Number:       f.next("roles"),
		Name:         name,
		NameCI:       text.Fold(name),
		Active:       true,
		Access:       access,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "roles", role)
	return role
}

// CreateUser creates an active user with password "password". A nil roleID
// makes the user an administrator.
func (f *Fixtures) CreateUser(ctx context.Context, restaurantID primitive.ObjectID, username, email string, roleID *primitive.ObjectID) models.User {
	f.t.Helper()

	// minimum cost keeps the suite fast
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		Number:       f.next("users"),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       roleID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateEmployee creates an active employee linked to userID when non-nil.
func (f *Fixtures) CreateEmployee(ctx context.Context, restaurantID primitive.ObjectID, fullName, email string, userID *primitive.ObjectID) models.Employee {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Employee{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		Number:       f.next("employees"),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		UserID:       userID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "employees", e)
	return e
}

// CreateTable creates a free table.
func (f *Fixtures) CreateTable(ctx context.Context, restaurantID primitive.ObjectID, number int) models.Table {
	f.t.Helper()

	now := time.Now().UTC()
	tbl := models.Table{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		Number:       number,
		Capacity:     4,
		Status:       models.TableFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "tables", tbl)
	return tbl
}

// CreateProduct creates an available product.
func (f *Fixtures) CreateProduct(ctx context.Context, restaurantID primitive.ObjectID, number int, name, category string, price float64) models.Product {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Product{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		Number:       number,
		Name:         name,
		NameCI:       text.Fold(name),
		Category:     category,
		Price:        price,
		Available:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "products", p)
	return p
}

// CreateOrder creates an order for tbl (nil for takeout).
func (f *Fixtures) CreateOrder(ctx context.Context, restaurantID primitive.ObjectID, number int, tbl *models.Table, status string, items ...models.OrderItem) models.Order {
	f.t.Helper()

	now := time.Now().UTC()
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	o := models.Order{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		Number:       number,
		Items:        items,
		Total:        total,
		OrderedAt:    now,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	if tbl != nil {
		o.TableID = &tbl.ID
		o.TableNumber = tbl.Number
	}
	f.insert(ctx, "orders", o)
	return o
}

// InvoiceParams describes a test invoice.
type InvoiceParams struct {
	Number    string
	OrderID   primitive.ObjectID
	CashierID primitive.ObjectID
	Method    string
	Total     float64
	Currency  currency.Code
	Rate      float64
	IssuedAt  time.Time
}

// CreateInvoice inserts an invoice directly, bypassing numbering and
// currency freezing.
func (f *Fixtures) CreateInvoice(ctx context.Context, restaurantID primitive.ObjectID, s InvoiceParams) models.Invoice {
	f.t.Helper()

	now := time.Now().UTC()
	if s.IssuedAt.IsZero() {
		s.IssuedAt = now
	}
	if s.Method == "" {
		s.Method = models.PaymentCash
	}
	if s.Currency == "" {
		s.Currency = currency.DefaultCode
	}
	if s.Rate == 0 {
		s.Rate = currency.DefaultRate
	}
	inv := models.Invoice{
		ID:                 primitive.NewObjectID(),
		RestaurantID:       restaurantID,
		Number:             s.Number,
		OrderID:            s.OrderID,
		PaymentMethod:      s.Method,
		Subtotal:           s.Total,
		Total:              s.Total,
		AmountPaid:         s.Total,
		CashierID:          s.CashierID,
		IssuedAt:           s.IssuedAt.UTC(),
		HistoricalCurrency: s.Currency,
		HistoricalRate:     s.Rate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.insert(ctx, "invoices", inv)
	return inv
}
