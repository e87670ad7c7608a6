// internal/app/system/csvutil/products.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/shopspring/decimal"
)

// ErrTooManyRows is returned when a file has more data rows than allowed.
var ErrTooManyRows = errors.New("csv has too many rows")

// ParseOptions bounds a parse.
type ParseOptions struct {
	MaxRows int
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows}
}

// ProductRow is one normalized menu line.
//
// Columns, in order: name, category, price, description, available.
// The last two may be omitted; available defaults to true.
type ProductRow struct {
	Line        int
	Name        string
	Category    string
	Price       float64
	Description string
	Available   bool
}

// RowError explains why a line was rejected.
type RowError struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ProductResult struct {
	Rows   []ProductRow
	Errors []RowError
}

func (r ProductResult) HasErrors() bool { return len(r.Errors) > 0 }

// ParseProductCSV reads a menu file. A header row is skipped when its first
// cell is "name" or "nombre". Bad lines are collected in Errors rather than
// failing the whole parse; only unreadable input and ErrTooManyRows are
// returned as errors. Nothing is written anywhere.
func ParseProductCSV(r io.Reader, opts ParseOptions) (ProductResult, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = MaxRows
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var res ProductResult
	seen := map[string]int{}
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ProductResult{}, err
		}
		line, _ := reader.FieldPos(0)
		if first && len(rec) > 0 {
			first = false
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if isHeader(rec[0]) {
				continue
			}
		}
		if blank(rec) {
			continue
		}
		if len(res.Rows)+len(res.Errors) >= opts.MaxRows {
			return ProductResult{}, ErrTooManyRows
		}

		row, reason := parseRow(rec)
		row.Line = line
		if reason == "" {
			key := text.Fold(row.Name)
			if prev, dup := seen[key]; dup {
				reason = fmt.Sprintf("duplicate product name (first on line %d)", prev)
			} else {
				seen[key] = line
			}
		}
		if reason != "" {
			res.Errors = append(res.Errors, RowError{Line: line, Name: row.Name, Reason: reason})
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func parseRow(rec []string) (ProductRow, string) {
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	row := ProductRow{
		Name:        col(0),
		Category:    col(1),
		Description: col(3),
		Available:   true,
	}
	if row.Name == "" {
		return row, "missing name"
	}
	if row.Category == "" {
		return row, "missing category"
	}

	raw := strings.TrimPrefix(strings.ReplaceAll(col(2), ",", ""), "$")
	if raw == "" {
		return row, "missing price"
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return row, fmt.Sprintf("invalid price %q", col(2))
	}
	if price.IsNegative() {
		return row, "price cannot be negative"
	}
	row.Price = price.Round(2).InexactFloat64()

	if v := col(4); v != "" {
		avail, ok := parseBool(v)
		if !ok {
			return row, fmt.Sprintf("invalid available value %q", v)
		}
		row.Available = avail
	}
	return row, ""
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "si", "sí":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}

func isHeader(cell string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	return c == "name" || c == "nombre"
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
