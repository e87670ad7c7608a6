package reporting

import (
	"context"
	"testing"
	"time"

	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRestaurants map[primitive.ObjectID]models.Restaurant

func (f fakeRestaurants) GetByID(_ context.Context, id primitive.ObjectID) (models.Restaurant, error) {
	r, ok := f[id]
	if !ok {
		return models.Restaurant{}, restaurantstore.ErrNotFound
	}
	return r, nil
}

type fakeInvoices struct {
	list       []models.Invoice
	rows       []invoicestore.SalesRow
	lastFilter invoicestore.SalesFilter
	peaks      []invoicestore.HourCount
}

func (f *fakeInvoices) Between(_ context.Context, restID primitive.ObjectID, from, to time.Time) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range f.list {
		if inv.RestaurantID != restID || inv.IssuedAt.Before(from) {
			continue
		}
		if !to.IsZero() && inv.IssuedAt.After(to) {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeInvoices) SalesRows(_ context.Context, _ primitive.ObjectID, sf invoicestore.SalesFilter) ([]invoicestore.SalesRow, error) {
	f.lastFilter = sf
	return f.rows, nil
}

func (f *fakeInvoices) PeakHours(_ context.Context, _ primitive.ObjectID, _, _ time.Time, _ *time.Location, _ int64) ([]invoicestore.HourCount, error) {
	return f.peaks, nil
}

type fakeOrders struct {
	orders []models.Order
	top    []orderstore.ProductUnits
	lines  []orderstore.CategoryLine
}

func (f *fakeOrders) List(_ context.Context, _ primitive.ObjectID, lf orderstore.ListFilter) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		for _, st := range lf.Statuses {
			if o.Status == st {
				out = append(out, o)
				break
			}
		}
	}
	if lf.Limit > 0 && int64(len(out)) > lf.Limit {
		out = out[:lf.Limit]
	}
	return out, nil
}

func (f *fakeOrders) TopProducts(context.Context, primitive.ObjectID, time.Time, int64) ([]orderstore.ProductUnits, error) {
	return f.top, nil
}

func (f *fakeOrders) PaidLinesByCategory(context.Context, primitive.ObjectID, time.Time) ([]orderstore.CategoryLine, error) {
	return f.lines, nil
}

type fakeTables struct{ occupied int64 }

func (f fakeTables) CountByStatus(_ context.Context, _ primitive.ObjectID, status string) (int64, error) {
	if status == models.TableOccupied {
		return f.occupied, nil
	}
	return 0, nil
}

type fakeSessions struct {
	list       []models.RegisterSession
	lastFilter registerstore.ListFilter
}

func (f *fakeSessions) List(_ context.Context, _ primitive.ObjectID, lf registerstore.ListFilter) ([]models.RegisterSession, error) {
	f.lastFilter = lf
	return f.list, nil
}

// Wednesday 2026-03-11 15:30 UTC.
var fixedNow = time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	restID   primitive.ObjectID
	rests    fakeRestaurants
	invoices *fakeInvoices
	orders   *fakeOrders
	sessions *fakeSessions
}

func newFixture(t *testing.T, target currency.Code) *fixture {
	t.Helper()
	restID := primitive.NewObjectID()
	f := &fixture{
		restID: restID,
		rests: fakeRestaurants{restID: {
			ID:       restID,
			Settings: models.Settings{Currency: target, ExchangeRate: 36.5},
		}},
		invoices: &fakeInvoices{},
		orders:   &fakeOrders{},
		sessions: &fakeSessions{},
	}
	f.svc = New(f.rests, f.invoices, f.orders, fakeTables{occupied: 4}, f.sessions, nil,
		WithClock(func() time.Time { return fixedNow }))
	return f
}

func (f *fixture) invoice(total float64, c currency.Code, rate float64, at time.Time) {
	f.invoices.list = append(f.invoices.list, models.Invoice{
		RestaurantID:       f.restID,
		Total:              total,
		HistoricalCurrency: c,
		HistoricalRate:     rate,
		IssuedAt:           at,
	})
}

func TestNormalizedTotal_MixedRegimes(t *testing.T) {
	invs := []models.Invoice{
		{Total: 100, HistoricalCurrency: currency.NIO, HistoricalRate: 36.5},
		{Total: 10, HistoricalCurrency: currency.USD, HistoricalRate: 36.5},
	}

	nio := NormalizedTotal(invs, currency.NIO)
	assert.Equal(t, 465.0, currency.Round2(nio))

	usd := NormalizedTotal(invs, currency.USD)
	assert.InDelta(t, 12.74, usd.InexactFloat64(), 0.01)

	raw := 0.0
	for _, inv := range invs {
		raw += inv.Total
	}
	assert.NotEqual(t, raw, nio.InexactFloat64())
}

func TestNormalizedTotal_UsesEachRecordsRate(t *testing.T) {
	invs := []models.Invoice{
		{Total: 10, HistoricalCurrency: currency.USD, HistoricalRate: 36.0},
		{Total: 10, HistoricalCurrency: currency.USD, HistoricalRate: 37.0},
	}
	assert.Equal(t, 730.0, currency.Round2(NormalizedTotal(invs, currency.NIO)))
}

func TestNormalizedTotal_UnknownCurrencyCountsAsTarget(t *testing.T) {
	invs := []models.Invoice{{Total: 50, HistoricalCurrency: "", HistoricalRate: 0}}
	assert.Equal(t, 50.0, currency.Round2(NormalizedTotal(invs, currency.USD)))
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, currency.NIO)
	ctx := context.Background()

	f.invoice(100, currency.NIO, 36.5, fixedNow.Add(-time.Hour))
	f.invoice(10, currency.USD, 36.5, fixedNow.Add(-2*time.Hour))
	f.invoice(999, currency.NIO, 36.5, fixedNow.AddDate(0, 0, -1))

	f.orders.orders = []models.Order{
		{Status: models.OrderPending, CreatedAt: fixedNow.Add(-10 * time.Minute)},
		{Status: models.OrderPreparing, CreatedAt: fixedNow.Add(-20 * time.Minute)},
		{Status: models.OrderPaid, CreatedAt: fixedNow.Add(-3 * time.Hour)},
	}

	stats, err := f.svc.DashboardStats(ctx, f.restID)
	require.NoError(t, err)
	assert.Equal(t, 465.0, stats.SalesToday)
	assert.Equal(t, int64(4), stats.OccupiedTables)
	assert.Equal(t, int64(2), stats.ActiveOrders)
	assert.Equal(t, "15min", stats.AverageTime)
	assert.Equal(t, currency.NIO, stats.Currency)
}

func TestDashboardStats_NoActiveOrders(t *testing.T) {
	f := newFixture(t, currency.USD)
	stats, err := f.svc.DashboardStats(context.Background(), f.restID)
	require.NoError(t, err)
	assert.Equal(t, "0min", stats.AverageTime)
	assert.Equal(t, 0.0, stats.SalesToday)
}

func TestDashboardStats_RestaurantNotFound(t *testing.T) {
	f := newFixture(t, currency.NIO)
	_, err := f.svc.DashboardStats(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestRecentOrders_LimitsToThree(t *testing.T) {
	f := newFixture(t, currency.NIO)
	for i := 0; i < 5; i++ {
		f.orders.orders = append(f.orders.orders, models.Order{Number: i + 1, Status: models.OrderPending})
	}
	out, err := f.svc.RecentOrders(context.Background(), f.restID)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestInfoDashboard_Buckets(t *testing.T) {
	f := newFixture(t, currency.NIO)

	// Week starts Sunday 2026-03-08.
	f.invoice(100, currency.NIO, 36.5, fixedNow.Add(-time.Hour))                    // today
	f.invoice(10, currency.USD, 36.0, time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)) // this week
	f.invoice(200, currency.NIO, 36.5, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)) // this month
	f.invoice(500, currency.NIO, 36.5, time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)) // last month

	f.orders.top = []orderstore.ProductUnits{{Name: "Tacos", Units: 12}}
	f.orders.lines = []orderstore.CategoryLine{
		{Category: "Drinks", Amount: 2, HistoricalCurrency: "USD", HistoricalRate: 36.5},
		{Category: "Food", Amount: 50, HistoricalCurrency: "NIO", HistoricalRate: 36.5},
		{Category: "Food", Amount: 20, HistoricalCurrency: "NIO", HistoricalRate: 36.5},
		{Category: "", Amount: 5},
	}
	f.invoices.peaks = []invoicestore.HourCount{{Hour: 14, Count: 3}}

	d, err := f.svc.InfoDashboard(context.Background(), f.restID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, d.Sales.Today)
	assert.Equal(t, 460.0, d.Sales.Week)
	assert.Equal(t, 660.0, d.Sales.Month)
	assert.Equal(t, 220.0, d.Sales.AverageTicket)
	assert.Equal(t, currency.NIO, d.Currency)

	require.Len(t, d.Categories, 3)
	assert.Equal(t, CategorySales{Category: "Drinks", Total: 73}, d.Categories[0])
	assert.Equal(t, CategorySales{Category: "Food", Total: 70}, d.Categories[1])
	assert.Equal(t, CategorySales{Category: uncategorized, Total: 5}, d.Categories[2])

	assert.Equal(t, f.orders.top, d.TopProducts)
	assert.Equal(t, f.invoices.peaks, d.PeakHours)
}

func TestRankCategories_Limit(t *testing.T) {
	var lines []orderstore.CategoryLine
	for i, c := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		lines = append(lines, orderstore.CategoryLine{Category: c, Amount: float64(i + 1), HistoricalCurrency: "NIO", HistoricalRate: 36.5})
	}
	out := rankCategories(lines, currency.NIO, 5)
	require.Len(t, out, 5)
	assert.Equal(t, "g", out[0].Category)
	assert.Equal(t, "c", out[4].Category)
}

func TestTodaySummary(t *testing.T) {
	f := newFixture(t, currency.USD)
	f.invoice(100, currency.NIO, 36.5, fixedNow.Add(-time.Hour))
	f.invoice(10, currency.USD, 36.5, fixedNow.Add(-time.Hour))

	sum, err := f.svc.TodaySummary(context.Background(), f.restID)
	require.NoError(t, err)
	assert.Equal(t, currency.USD, sum.Currency)
	assert.Equal(t, 2, sum.Invoices)
	assert.InDelta(t, 12.74, sum.Total, 0.01)
	assert.InDelta(t, 6.37, sum.AverageTicket, 0.01)
}

// Invoices without a stored regime count at face value in today's currency.
func TestTodaySummary_LegacyInvoice(t *testing.T) {
	f := newFixture(t, currency.NIO)
	f.invoice(100, currency.NIO, 36.5, fixedNow.Add(-time.Hour))
	f.invoice(50, "", 0, fixedNow.Add(-2*time.Hour))
	f.invoice(2, currency.USD, 37, fixedNow.Add(-3*time.Hour))

	sum, err := f.svc.TodaySummary(context.Background(), f.restID)
	require.NoError(t, err)
	assert.Equal(t, currency.NIO, sum.Currency)
	assert.Equal(t, 3, sum.Invoices)
	assert.Equal(t, 224.0, sum.Total)
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t, currency.NIO)
	f.invoices.rows = []invoicestore.SalesRow{
		{Number: "0002", Total: 10, HistoricalCurrency: "USD", HistoricalRate: 36.5},
		{Number: "0001", Total: 100, HistoricalCurrency: "NIO", HistoricalRate: 36.5},
	}

	rep, err := f.svc.SalesReport(context.Background(), f.restID, SalesQuery{
		Period:       PeriodThisWeek,
		EmployeeName: "  ana ",
		TableNumber:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, 465.0, rep.Total)
	assert.Len(t, rep.Rows, 2)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), rep.From)
	assert.Equal(t, "ana", f.invoices.lastFilter.EmployeeName)
	assert.Equal(t, 4, f.invoices.lastFilter.TableNumber)
}

func TestSalesReport_InvalidPeriod(t *testing.T) {
	f := newFixture(t, currency.NIO)
	_, err := f.svc.SalesReport(context.Background(), f.restID, SalesQuery{Period: "fortnight"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRegisterReport_UsesCurrentRate(t *testing.T) {
	f := newFixture(t, currency.NIO)
	r := f.rests[f.restID]
	r.Settings.ExchangeRate = 40
	f.rests[f.restID] = r

	f.sessions.list = []models.RegisterSession{
		{HistoricalCurrency: currency.NIO, HistoricalRate: 36.5, OpeningFloat: 100, SystemCashSales: 250, ActualCash: 360, Difference: 10},
		{HistoricalCurrency: currency.USD, HistoricalRate: 36.5, OpeningFloat: 10, SystemCashSales: 5, ActualCash: 15, Difference: 0},
	}

	rep, err := f.svc.RegisterReport(context.Background(), f.restID, RegisterQuery{
		From:        "2026-03-01",
		To:          "2026-03-11",
		CashierName: "maria",
	})
	require.NoError(t, err)
	assert.Equal(t, currency.NIO, rep.Summary.NormalizedCurrency)
	assert.Equal(t, 500.0, rep.Summary.OpeningFloat)
	assert.Equal(t, 450.0, rep.Summary.CashSales)
	assert.Equal(t, 960.0, rep.Summary.ActualCash)
	assert.Equal(t, 10.0, rep.Summary.Difference)
	assert.Len(t, rep.Sessions, 2)

	assert.Equal(t, "maria", f.sessions.lastFilter.CashierName)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), f.sessions.lastFilter.From)
	assert.Equal(t, 11, f.sessions.lastFilter.To.Day())
}

func TestRegisterReport_NoDatesMeansAll(t *testing.T) {
	f := newFixture(t, currency.USD)
	_, err := f.svc.RegisterReport(context.Background(), f.restID, RegisterQuery{From: "2026-03-01"})
	require.NoError(t, err)
	assert.True(t, f.sessions.lastFilter.From.IsZero())
	assert.True(t, f.sessions.lastFilter.To.IsZero())
}

func TestRegisterReport_BadDates(t *testing.T) {
	f := newFixture(t, currency.USD)
	_, err := f.svc.RegisterReport(context.Background(), f.restID, RegisterQuery{From: "2026-03-10", To: "2026-03-01"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
