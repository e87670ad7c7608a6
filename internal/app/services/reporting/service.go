// internal/app/services/reporting/service.go
package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

const (
	recentOrdersLimit = 3
	topProductsLimit  = 5
	topCategoryLimit  = 5
	peakHoursLimit    = 3
	uncategorized     = "Uncategorized"
)

type Restaurants interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Restaurant, error)
}

type Invoices interface {
	Between(ctx context.Context, restaurantID primitive.ObjectID, from, to time.Time) ([]models.Invoice, error)
	SalesRows(ctx context.Context, restaurantID primitive.ObjectID, f invoicestore.SalesFilter) ([]invoicestore.SalesRow, error)
	PeakHours(ctx context.Context, restaurantID primitive.ObjectID, from, to time.Time, loc *time.Location, limit int64) ([]invoicestore.HourCount, error)
}

type Orders interface {
	List(ctx context.Context, restaurantID primitive.ObjectID, f orderstore.ListFilter) ([]models.Order, error)
	TopProducts(ctx context.Context, restaurantID primitive.ObjectID, since time.Time, limit int64) ([]orderstore.ProductUnits, error)
	PaidLinesByCategory(ctx context.Context, restaurantID primitive.ObjectID, since time.Time) ([]orderstore.CategoryLine, error)
}

type Tables interface {
	CountByStatus(ctx context.Context, restaurantID primitive.ObjectID, status string) (int64, error)
}

type Sessions interface {
	List(ctx context.Context, restaurantID primitive.ObjectID, f registerstore.ListFilter) ([]models.RegisterSession, error)
}

// Service builds dashboards and reports. Every money figure it returns is
// expressed in the restaurant's current currency.
type Service struct {
	restaurants Restaurants
	invoices    Invoices
	orders      Orders
	tables      Tables
	sessions    Sessions
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone that defines "today", weeks and months.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(restaurants Restaurants, invoices Invoices, orders Orders, tables Tables, sessions Sessions, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		restaurants: restaurants,
		invoices:    invoices,
		orders:      orders,
		tables:      tables,
		sessions:    sessions,
		loc:         time.UTC,
		now:         time.Now,
		log:         logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Location is the zone report periods are read in.
func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

func (s *Service) restaurant(ctx context.Context, id primitive.ObjectID) (models.Restaurant, error) {
	r, err := s.restaurants.GetByID(ctx, id)
	if errors.Is(err, restaurantstore.ErrNotFound) {
		return models.Restaurant{}, ErrRestaurantNotFound
	}
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("load restaurant: %w", err)
	}
	return r, nil
}

// normalize converts value from a record's frozen regime into target using
// that record's own rate. A record without a recognizable currency is
// taken to be in target already.
func normalize(value float64, hist currency.Code, rate float64, target currency.Code) decimal.Decimal {
	if !hist.Valid() {
		return decimal.NewFromFloat(value)
	}
	return currency.ConvertFloat(value, hist, rate, target)
}

// NormalizedTotal sums invoices after converting each into target with its
// own historical rate.
func NormalizedTotal(invoices []models.Invoice, target currency.Code) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(normalize(inv.Total, inv.HistoricalCurrency, inv.HistoricalRate, target))
	}
	return sum
}

type DashboardStats struct {
	OccupiedTables int64         `json:"occupied_tables"`
	ActiveOrders   int64         `json:"active_orders"`
	SalesToday     float64       `json:"sales_today"`
	AverageTime    string        `json:"average_time"`
	Currency       currency.Code `json:"currency"`
}

// DashboardStats summarizes today's activity.
func (s *Service) DashboardStats(ctx context.Context, restaurantID primitive.ObjectID) (DashboardStats, error) {
	rest, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return DashboardStats{}, err
	}
	target := rest.CurrentCurrency()
	now := s.clock()

	invs, err := s.invoices.Between(ctx, restaurantID, startOfDay(now), endOfDay(now))
	if err != nil {
		return DashboardStats{}, fmt.Errorf("today's invoices: %w", err)
	}
	occupied, err := s.tables.CountByStatus(ctx, restaurantID, models.TableOccupied)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("count tables: %w", err)
	}
	active, err := s.orders.List(ctx, restaurantID, orderstore.ListFilter{Statuses: models.ActiveOrderStatuses})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("active orders: %w", err)
	}

	return DashboardStats{
		OccupiedTables: occupied,
		ActiveOrders:   int64(len(active)),
		SalesToday:     currency.Round2(NormalizedTotal(invs, target)),
		AverageTime:    fmt.Sprintf("%dmin", averageAgeMinutes(active, now)),
		Currency:       target,
	}, nil
}

func averageAgeMinutes(orders []models.Order, now time.Time) int64 {
	if len(orders) == 0 {
		return 0
	}
	var total time.Duration
	for _, o := range orders {
		start := o.CreatedAt
		if start.IsZero() {
			start = o.OrderedAt
		}
		total += now.Sub(start)
	}
	avg := total / time.Duration(len(orders))
	return int64(math.Round(avg.Minutes()))
}

// RecentOrders returns the newest orders the kitchen still has to act on.
func (s *Service) RecentOrders(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Order, error) {
	out, err := s.orders.List(ctx, restaurantID, orderstore.ListFilter{
		Statuses: models.ActiveOrderStatuses,
		Limit:    recentOrdersLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	return out, nil
}

type SalesTotals struct {
	Today         float64 `json:"today"`
	Week          float64 `json:"week"`
	Month         float64 `json:"month"`
	AverageTicket float64 `json:"average_ticket"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type InfoDashboard struct {
	Sales       SalesTotals               `json:"sales"`
	TopProducts []orderstore.ProductUnits `json:"top_products"`
	Categories  []CategorySales           `json:"categories"`
	PeakHours   []invoicestore.HourCount  `json:"peak_hours"`
	Currency    currency.Code             `json:"currency"`
}

// InfoDashboard reports month-to-date sales broken into today, this week
// (starting Sunday) and this month, with rankings for the month and peak
// hours for today.
func (s *Service) InfoDashboard(ctx context.Context, restaurantID primitive.ObjectID) (InfoDashboard, error) {
	rest, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return InfoDashboard{}, err
	}
	target := rest.CurrentCurrency()
	now := s.clock()
	today := startOfDay(now)
	week := today.AddDate(0, 0, -int(today.Weekday()))
	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	invs, err := s.invoices.Between(ctx, restaurantID, month, time.Time{})
	if err != nil {
		return InfoDashboard{}, fmt.Errorf("month invoices: %w", err)
	}

	var dayT, weekT, monthT decimal.Decimal
	for _, inv := range invs {
		v := normalize(inv.Total, inv.HistoricalCurrency, inv.HistoricalRate, target)
		monthT = monthT.Add(v)
		issued := inv.IssuedAt.In(s.loc)
		if !issued.Before(week) {
			weekT = weekT.Add(v)
		}
		if !issued.Before(today) {
			dayT = dayT.Add(v)
		}
	}
	avg := decimal.Zero
	if len(invs) > 0 {
		avg = monthT.Div(decimal.NewFromInt(int64(len(invs))))
	}

	top, err := s.orders.TopProducts(ctx, restaurantID, month, topProductsLimit)
	if err != nil {
		return InfoDashboard{}, fmt.Errorf("top products: %w", err)
	}
	lines, err := s.orders.PaidLinesByCategory(ctx, restaurantID, month)
	if err != nil {
		return InfoDashboard{}, fmt.Errorf("category sales: %w", err)
	}
	peaks, err := s.invoices.PeakHours(ctx, restaurantID, today, endOfDay(now), s.loc, peakHoursLimit)
	if err != nil {
		return InfoDashboard{}, fmt.Errorf("peak hours: %w", err)
	}

	return InfoDashboard{
		Sales: SalesTotals{
			Today:         currency.Round2(dayT),
			Week:          currency.Round2(weekT),
			Month:         currency.Round2(monthT),
			AverageTicket: currency.Round2(avg),
		},
		TopProducts: top,
		Categories:  rankCategories(lines, target, topCategoryLimit),
		PeakHours:   peaks,
		Currency:    target,
	}, nil
}

// rankCategories sums order lines per category in target and returns the
// best sellers, ties broken by name.
func rankCategories(lines []orderstore.CategoryLine, target currency.Code, limit int) []CategorySales {
	sums := map[string]decimal.Decimal{}
	for _, l := range lines {
		cat := strings.TrimSpace(l.Category)
		if cat == "" {
			cat = uncategorized
		}
		sums[cat] = sums[cat].Add(normalize(l.Amount, currency.Code(l.HistoricalCurrency), l.HistoricalRate, target))
	}
	out := make([]CategorySales, 0, len(sums))
	for cat, v := range sums {
		out = append(out, CategorySales{Category: cat, Total: currency.Round2(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

type TodaySummary struct {
	Total         float64       `json:"total"`
	Invoices      int           `json:"invoices"`
	AverageTicket float64       `json:"average_ticket"`
	Currency      currency.Code `json:"currency"`
}

// TodaySummary totals today's invoices in the restaurant's current currency.
func (s *Service) TodaySummary(ctx context.Context, restaurantID primitive.ObjectID) (TodaySummary, error) {
	rest, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return TodaySummary{}, err
	}
	now := s.clock()
	invs, err := s.invoices.Between(ctx, restaurantID, startOfDay(now), endOfDay(now))
	if err != nil {
		return TodaySummary{}, fmt.Errorf("today's invoices: %w", err)
	}
	t := currency.NewTotaler(rest.CurrentCurrency())
	for _, inv := range invs {
		from := inv.HistoricalCurrency
		if !from.Valid() {
			// legacy rows without a regime count at face value
			from = t.Target()
		}
		t.AddFloat(inv.Total, from, inv.HistoricalRate)
	}
	return TodaySummary{
		Total:         currency.Round2(t.Total()),
		Invoices:      t.Count(),
		AverageTicket: currency.Round2(t.Average()),
		Currency:      t.Target(),
	}, nil
}

// SalesQuery selects the invoices of a sales report.
type SalesQuery struct {
	Period       string
	From         string // YYYY-MM-DD, custom only
	To           string
	EmployeeName string
	TableNumber  int
}

type SalesReport struct {
	From     time.Time               `json:"from"`
	To       time.Time               `json:"to"`
	Rows     []invoicestore.SalesRow `json:"rows"`
	Total    float64                 `json:"total"`
	Currency currency.Code           `json:"currency"`
}

// SalesReport lists invoices of the period with their order, waiter and
// cashier. Rows keep their historical amounts; Total is normalized.
func (s *Service) SalesReport(ctx context.Context, restaurantID primitive.ObjectID, q SalesQuery) (SalesReport, error) {
	rest, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return SalesReport{}, err
	}
	from, to, err := PeriodRange(q.Period, s.clock(), q.From, q.To)
	if err != nil {
		return SalesReport{}, err
	}
	rows, err := s.invoices.SalesRows(ctx, restaurantID, invoicestore.SalesFilter{
		From:         from,
		To:           to,
		EmployeeName: strings.TrimSpace(q.EmployeeName),
		TableNumber:  q.TableNumber,
	})
	if err != nil {
		return SalesReport{}, fmt.Errorf("sales rows: %w", err)
	}
	target := rest.CurrentCurrency()
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(normalize(r.Total, currency.Code(r.HistoricalCurrency), r.HistoricalRate, target))
	}
	return SalesReport{From: from, To: to, Rows: rows, Total: currency.Round2(sum), Currency: target}, nil
}

// RegisterQuery selects the sessions of a register report. From and To are
// YYYY-MM-DD and only apply when both are set.
type RegisterQuery struct {
	From        string
	To          string
	CashierName string
}

type RegisterSummary struct {
	OpeningFloat       float64       `json:"opening_float"`
	CashSales          float64       `json:"cash_sales"`
	ActualCash         float64       `json:"actual_cash"`
	Difference         float64       `json:"difference"`
	NormalizedCurrency currency.Code `json:"normalized_currency"`
}

type RegisterReport struct {
	Summary  RegisterSummary          `json:"summary"`
	Sessions []models.RegisterSession `json:"sessions"`
}

// RegisterReport lists sessions by opening date and cashier name. Summary
// figures are converted with the restaurant's current rate, the same rate
// for every session; the sessions themselves are returned as stored.
func (s *Service) RegisterReport(ctx context.Context, restaurantID primitive.ObjectID, q RegisterQuery) (RegisterReport, error) {
	rest, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return RegisterReport{}, err
	}
	f := registerstore.ListFilter{CashierName: strings.TrimSpace(q.CashierName)}
	if strings.TrimSpace(q.From) != "" && strings.TrimSpace(q.To) != "" {
		from, to, err := DateRange(q.From, q.To, s.loc)
		if err != nil {
			return RegisterReport{}, err
		}
		f.From, f.To = from, to
	}
	sessions, err := s.sessions.List(ctx, restaurantID, f)
	if err != nil {
		return RegisterReport{}, fmt.Errorf("list sessions: %w", err)
	}

	target := rest.CurrentCurrency()
	rate := rest.CurrentRate()
	var opening, sales, actual, diff decimal.Decimal
	for _, rs := range sessions {
		opening = opening.Add(normalize(rs.OpeningFloat, rs.HistoricalCurrency, rate, target))
		sales = sales.Add(normalize(rs.SystemCashSales, rs.HistoricalCurrency, rate, target))
		actual = actual.Add(normalize(rs.ActualCash, rs.HistoricalCurrency, rate, target))
		diff = diff.Add(normalize(rs.Difference, rs.HistoricalCurrency, rate, target))
	}
	return RegisterReport{
		Summary: RegisterSummary{
			OpeningFloat:       currency.Round2(opening),
			CashSales:          currency.Round2(sales),
			ActualCash:         currency.Round2(actual),
			Difference:         currency.Round2(diff),
			NormalizedCurrency: target,
		},
		Sessions: sessions,
	}, nil
}
