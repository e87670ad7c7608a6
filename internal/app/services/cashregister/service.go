// internal/app/services/cashregister/service.go
package cashregister

import (
	"context"
	"errors"
	"fmt"
	"time"

	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	registerstore "github.com/dalemusser/foodgestor/internal/app/store/registers"
	restaurantstore "github.com/dalemusser/foodgestor/internal/app/store/restaurants"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/htmlsanitize"
	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notes longer than this are truncated on close.
const maxNotes = 1000

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrCashierNotFound    = errors.New("cashier not found")
	ErrSessionNotFound    = registerstore.ErrNotFound
	ErrAlreadyOpen        = registerstore.ErrAlreadyOpen
	ErrNotOpen            = registerstore.ErrNotOpen
	ErrInvalidAmount      = errors.New("amount must be a non-negative number")
)

// Restaurants is the subset of the restaurant store the service reads.
type Restaurants interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Restaurant, error)
}

type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

type Sessions interface {
	Insert(ctx context.Context, rs models.RegisterSession) (models.RegisterSession, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.RegisterSession, error)
	FindOpen(ctx context.Context, restaurantID, cashierID primitive.ObjectID) (models.RegisterSession, error)
	HasOpen(ctx context.Context, restaurantID primitive.ObjectID) (bool, error)
	Close(ctx context.Context, id primitive.ObjectID, f registerstore.CloseFields) (models.RegisterSession, error)
}

type Invoices interface {
	SumForCashier(ctx context.Context, restaurantID, cashierID primitive.ObjectID, from, to time.Time) ([]invoicestore.Bucket, error)
}

// Service runs the open → closed register lifecycle.
type Service struct {
	restaurants Restaurants
	users       Users
	sessions    Sessions
	invoices    Invoices
	log         *zap.Logger

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for open and close timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(restaurants Restaurants, users Users, sessions Sessions, invoices Invoices, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		restaurants: restaurants,
		users:       users,
		sessions:    sessions,
		invoices:    invoices,
		log:         logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts a session for the cashier, freezing the restaurant's current
// currency and rate onto it.
func (s *Service) Open(ctx context.Context, restaurantID, cashierID primitive.ObjectID, openingFloat float64) (models.RegisterSession, error) {
	if openingFloat < 0 {
		return models.RegisterSession{}, ErrInvalidAmount
	}

	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if errors.Is(err, restaurantstore.ErrNotFound) {
		return models.RegisterSession{}, ErrRestaurantNotFound
	}
	if err != nil {
		return models.RegisterSession{}, fmt.Errorf("load restaurant: %w", err)
	}

	cashier, err := s.users.GetByID(ctx, cashierID)
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && cashier.RestaurantID != restaurantID) {
		return models.RegisterSession{}, ErrCashierNotFound
	}
	if err != nil {
		return models.RegisterSession{}, fmt.Errorf("load cashier: %w", err)
	}

	// Advisory; the partial unique index decides.
	if _, err := s.sessions.FindOpen(ctx, restaurantID, cashierID); err == nil {
		return models.RegisterSession{}, ErrAlreadyOpen
	} else if !errors.Is(err, registerstore.ErrNotFound) {
		return models.RegisterSession{}, fmt.Errorf("find open session: %w", err)
	}

	rs, err := s.sessions.Insert(ctx, models.RegisterSession{
		RestaurantID:       restaurantID,
		OpeningCashierID:   cashierID,
		CashierName:        cashier.Username,
		OpenedAt:           s.now(),
		OpeningFloat:       openingFloat,
		HistoricalCurrency: rest.CurrentCurrency(),
		HistoricalRate:     rest.CurrentRate(),
	})
	if err != nil {
		if errors.Is(err, registerstore.ErrAlreadyOpen) {
			return models.RegisterSession{}, ErrAlreadyOpen
		}
		return models.RegisterSession{}, fmt.Errorf("insert session: %w", err)
	}

	metrics.RegistersOpened.Inc()
	s.log.Info("register opened",
		zap.String("session_id", rs.ID.Hex()),
		zap.String("restaurant_id", restaurantID.Hex()),
		zap.String("cashier_id", cashierID.Hex()),
		zap.String("currency", rs.HistoricalCurrency.String()),
		zap.Float64("opening_float", openingFloat))
	return rs, nil
}

// Reconciliation is the cash position of a session over a time window.
// Amounts are in the session's frozen currency.
type Reconciliation struct {
	Session       models.RegisterSession `json:"session"`
	Currency      currency.Code          `json:"currency"`
	From          time.Time              `json:"from"`
	To            time.Time              `json:"to"`
	CashSales     float64                `json:"cash_sales"`
	CardSales     float64                `json:"card_sales"`
	InvoiceCount  int64                  `json:"invoice_count"`
	ExpectedCash  float64                `json:"expected_cash"`
	MixedCurrency bool                   `json:"mixed_currency"`

	expected decimal.Decimal
}

// PreClose reports what closing now would expect in the drawer. It does not
// change the session.
func (s *Service) PreClose(ctx context.Context, sessionID primitive.ObjectID) (Reconciliation, error) {
	rs, err := s.openSession(ctx, sessionID)
	if err != nil {
		return Reconciliation{}, err
	}
	return s.reconcile(ctx, rs, time.Time{})
}

// Close counts the drawer and moves the session to closed. The closing
// cashier is always the one who opened it.
func (s *Service) Close(ctx context.Context, sessionID primitive.ObjectID, actualCash float64, notes string) (models.RegisterSession, error) {
	if actualCash < 0 {
		return models.RegisterSession{}, ErrInvalidAmount
	}

	closedAt := s.now()

	rs, err := s.openSession(ctx, sessionID)
	if err != nil {
		return models.RegisterSession{}, err
	}

	rec, err := s.reconcile(ctx, rs, closedAt)
	if err != nil {
		return models.RegisterSession{}, err
	}

	actual := decimal.NewFromFloat(actualCash)
	diff := actual.Sub(rec.expected)
	level := Classify(rec.expected, diff)

	closed, err := s.sessions.Close(ctx, rs.ID, registerstore.CloseFields{
		ClosedAt:         closedAt,
		ClosingCashierID: rs.OpeningCashierID,
		SystemCashSales:  rec.CashSales,
		SystemCardSales:  rec.CardSales,
		ExpectedCash:     rec.ExpectedCash,
		ActualCash:       currency.Round2(actual),
		Difference:       currency.Round2(diff),
		Deviation:        level,
		MixedCurrency:    rec.MixedCurrency,
		Notes:            htmlsanitize.PlainTextMax(notes, maxNotes),
	})
	if err != nil {
		if errors.Is(err, registerstore.ErrNotOpen) {
			return models.RegisterSession{}, ErrNotOpen
		}
		return models.RegisterSession{}, fmt.Errorf("close session: %w", err)
	}

	metrics.RegistersClosed.WithLabelValues(level).Inc()
	s.log.Info("register closed",
		zap.String("session_id", closed.ID.Hex()),
		zap.String("restaurant_id", closed.RestaurantID.Hex()),
		zap.Float64("expected_cash", closed.ExpectedCash),
		zap.Float64("actual_cash", closed.ActualCash),
		zap.Float64("difference", closed.Difference),
		zap.String("deviation", level),
		zap.Bool("mixed_currency", closed.MixedCurrency))
	return closed, nil
}

// Status is the "my register" view for one cashier.
type Status struct {
	Open    bool                    `json:"open"`
	Session *models.RegisterSession `json:"session,omitempty"`
}

func (s *Service) Status(ctx context.Context, restaurantID, cashierID primitive.ObjectID) (Status, error) {
	rs, err := s.sessions.FindOpen(ctx, restaurantID, cashierID)
	if errors.Is(err, registerstore.ErrNotFound) {
		return Status{Open: false}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("find open session: %w", err)
	}
	return Status{Open: true, Session: &rs}, nil
}

// HasOpen reports whether any cashier has an open session at the restaurant.
func (s *Service) HasOpen(ctx context.Context, restaurantID primitive.ObjectID) (bool, error) {
	return s.sessions.HasOpen(ctx, restaurantID)
}

// Get returns a session scoped to the restaurant.
func (s *Service) Get(ctx context.Context, restaurantID, sessionID primitive.ObjectID) (models.RegisterSession, error) {
	rs, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.RegisterSession{}, err
	}
	if rs.RestaurantID != restaurantID {
		return models.RegisterSession{}, ErrSessionNotFound
	}
	return rs, nil
}

func (s *Service) openSession(ctx context.Context, id primitive.ObjectID) (models.RegisterSession, error) {
	rs, err := s.sessions.GetByID(ctx, id)
	if errors.Is(err, registerstore.ErrNotFound) {
		return models.RegisterSession{}, ErrSessionNotFound
	}
	if err != nil {
		return models.RegisterSession{}, fmt.Errorf("load session: %w", err)
	}
	if !rs.IsOpen() {
		return models.RegisterSession{}, ErrNotOpen
	}
	return rs, nil
}

// reconcile sums the cashier's invoices issued in [opened_at, to]. A zero
// to leaves the window open. Each bucket is converted into the session's
// frozen currency with its own historical rate.
func (s *Service) reconcile(ctx context.Context, rs models.RegisterSession, to time.Time) (Reconciliation, error) {
	buckets, err := s.invoices.SumForCashier(ctx, rs.RestaurantID, rs.OpeningCashierID, rs.OpenedAt, to)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("sum invoices: %w", err)
	}

	target := rs.HistoricalCurrency
	if !target.Valid() {
		target = currency.DefaultCode
	}
	cash := currency.NewTotaler(target)
	card := currency.NewTotaler(target)
	seen := map[currency.Code]struct{}{}
	var count int64

	for _, b := range buckets {
		from := currency.Code(b.HistoricalCurrency)
		rate := b.HistoricalRate
		if !from.Valid() {
			from, rate = target, rs.HistoricalRate
		}
		seen[from] = struct{}{}
		count += b.Count
		if models.IsCashEquivalent(b.PaymentMethod) {
			cash.AddFloat(b.Total, from, rate)
		} else {
			card.AddFloat(b.Total, from, rate)
		}
	}

	expected := decimal.NewFromFloat(rs.OpeningFloat).Add(cash.Total())
	return Reconciliation{
		Session:       rs,
		Currency:      target,
		From:          rs.OpenedAt,
		To:            to,
		CashSales:     currency.Round2(cash.Total()),
		CardSales:     currency.Round2(card.Total()),
		InvoiceCount:  count,
		ExpectedCash:  currency.Round2(expected),
		MixedCurrency: len(seen) > 1,
		expected:      expected,
	}, nil
}

var (
	onePct  = decimal.RequireFromString("0.01")
	fivePct = decimal.RequireFromString("0.05")
)

// Classify grades a closing difference against the expected cash:
// up to 1% normal, up to 5% warning, anything more critical. With nothing
// expected, any difference is critical.
func Classify(expected, difference decimal.Decimal) string {
	if difference.IsZero() {
		return models.DeviationNormal
	}
	if expected.IsZero() {
		return models.DeviationCritical
	}
	ratio := difference.Abs().Div(expected.Abs())
	switch {
	case ratio.LessThanOrEqual(onePct):
		return models.DeviationNormal
	case ratio.LessThanOrEqual(fivePct):
		return models.DeviationWarning
	default:
		return models.DeviationCritical
	}
}
