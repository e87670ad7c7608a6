// internal/domain/currency/currency.go
package currency

// Terminology: Exchange Rate
//   - A rate is always quoted as "1 USD = N NIO". NIO is the base the rate is
//     expressed in; USD is the foreign currency.
//   - Historical currency/rate: the pair frozen onto an invoice or register
//     session when it was created.

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Code identifies a currency supported by a restaurant.
type Code string

const (
	USD Code = "USD"
	NIO Code = "NIO"
)

// Defaults applied to a restaurant that has not configured its settings.
const (
	DefaultCode = NIO
	DefaultRate = 36.5
)

// All lists every supported code, in display order.
var All = []Code{NIO, USD}

// Valid reports whether c is a supported currency code.
func (c Code) Valid() bool {
	return c == USD || c == NIO
}

func (c Code) String() string { return string(c) }

// Symbol is the printed prefix for amounts in c.
func (c Code) Symbol() string {
	switch c {
	case USD:
		return "$"
	case NIO:
		return "C$"
	}
	return string(c) + " "
}

// Parse converts user input (any case, surrounding space) to a Code.
func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

// Factor returns the multiplier that converts an amount held in `from`,
// frozen at `rate`, into `to`.
//
// A non-positive rate makes NIO→USD undefined; the factor is 0 in that
// case, not an error.
func Factor(from Code, rate decimal.Decimal, to Code) decimal.Decimal {
	if from == to {
		return decimal.NewFromInt(1)
	}
	switch {
	case from == USD && to == NIO:
		return rate
	case from == NIO && to == USD:
		if !rate.IsPositive() {
			return decimal.Zero
		}
		return decimal.NewFromInt(1).Div(rate)
	}
	return decimal.Zero
}

// Convert expresses amount (held in from at the given rate) in to.
func Convert(amount decimal.Decimal, from Code, rate decimal.Decimal, to Code) decimal.Decimal {
	if from == to {
		return amount
	}
	if from == NIO && to == USD {
		if !rate.IsPositive() {
			return decimal.Zero
		}
		return amount.Div(rate)
	}
	return amount.Mul(Factor(from, rate, to))
}

// ConvertFloat is Convert for values stored as BSON doubles.
func ConvertFloat(amount float64, from Code, rate float64, to Code) decimal.Decimal {
	return Convert(decimal.NewFromFloat(amount), from, decimal.NewFromFloat(rate), to)
}

// Amount is a monetary value together with the currency regime it was
// recorded under.
type Amount struct {
	Value    decimal.Decimal
	Currency Code
	Rate     decimal.Decimal
}

// In converts a into the target currency using a's own frozen rate.
func (a Amount) In(to Code) decimal.Decimal {
	return Convert(a.Value, a.Currency, a.Rate, to)
}

// Totaler accumulates amounts recorded under different regimes into a
// single target currency. The zero value is not usable; see NewTotaler.
type Totaler struct {
	target Code
	total  decimal.Decimal
	count  int
	seen   map[Code]struct{}
}

// NewTotaler returns a Totaler that normalizes everything into target.
func NewTotaler(target Code) *Totaler {
	return &Totaler{target: target, total: decimal.Zero, seen: make(map[Code]struct{}, 2)}
}

// Add converts a into the target currency and adds it to the total.
// The converted value is returned so callers can bucket it further.
func (t *Totaler) Add(a Amount) decimal.Decimal {
	v := a.In(t.target)
	t.total = t.total.Add(v)
	t.count++
	t.seen[a.Currency] = struct{}{}
	return v
}

// AddFloat is Add for stored doubles.
func (t *Totaler) AddFloat(value float64, from Code, rate float64) decimal.Decimal {
	return t.Add(Amount{Value: decimal.NewFromFloat(value), Currency: from, Rate: decimal.NewFromFloat(rate)})
}

func (t *Totaler) Total() decimal.Decimal { return t.total }
func (t *Totaler) Count() int             { return t.count }
func (t *Totaler) Target() Code           { return t.target }

// Mixed reports whether amounts from more than one currency were added.
func (t *Totaler) Mixed() bool { return len(t.seen) > 1 }

// Average returns Total/Count, or zero when nothing was added.
func (t *Totaler) Average() decimal.Decimal {
	if t.count == 0 {
		return decimal.Zero
	}
	return t.total.Div(decimal.NewFromInt(int64(t.count)))
}

// Round2 rounds to cents and returns a float64 for JSON/BSON output.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
