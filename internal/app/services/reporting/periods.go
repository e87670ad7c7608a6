// internal/app/services/reporting/periods.go
package reporting

import (
	"errors"
	"strings"
	"time"
)

// Sales report periods.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodThisWeek  = "this_week"
	PeriodThisMonth = "this_month"
	PeriodCustom    = "custom"
)

var ErrInvalidPeriod = errors.New("invalid report period")

const dateLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// PeriodRange resolves a named period to an inclusive [from, to] range in
// now's location. An empty period means today. For custom, from and to are
// YYYY-MM-DD dates; when either is missing the range falls back to today.
// Weeks start on Monday.
func PeriodRange(period string, now time.Time, from, to string) (time.Time, time.Time, error) {
	today := startOfDay(now)
	end := endOfDay(now)

	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", PeriodToday:
		return today, end, nil
	case PeriodYesterday:
		y := today.AddDate(0, 0, -1)
		return y, endOfDay(y), nil
	case PeriodThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), end, nil
	case PeriodThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), end, nil
	case PeriodCustom:
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return today, end, nil
		}
		return DateRange(from, to, now.Location())
	}
	return time.Time{}, time.Time{}, ErrInvalidPeriod
}

// DateRange parses two YYYY-MM-DD dates into [start of from, end of to].
func DateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	f, err := time.ParseInLocation(dateLayout, strings.TrimSpace(from), loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(to), loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	if t.Before(f) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return f, endOfDay(t), nil
}
