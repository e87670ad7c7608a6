// internal/app/system/documents/sheets.go
package documents

import (
	"fmt"
	"io"

	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type for workbook downloads.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteSalesSheet writes the sales report as a single-sheet workbook. Row
// amounts stay in each invoice's own currency; the footer total is the
// normalized one.
func WriteSalesSheet(w io.Writer, rep reporting.SalesReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []any{"Invoice", "Issued", "Table", "Waiter", "Cashier", "Customer", "Method",
		"Subtotal", "Tip", "Tax", "Total", "Currency", "Rate"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rep.Rows {
		row := []any{r.Number, r.IssuedAt.Format("2006-01-02 15:04"), r.TableNumber, r.Waiter, r.Cashier,
			r.CustomerName, r.PaymentMethod, r.Subtotal, r.Tip, r.Tax, r.Total, r.HistoricalCurrency, r.HistoricalRate}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}
	footer := []any{"Total (" + rep.Currency.String() + ")", nil, nil, nil, nil, nil, nil, nil, nil, nil, rep.Total}
	if err := f.SetSheetRow(sheet, cell(1, len(rep.Rows)+3), &footer); err != nil {
		return err
	}
	if err := styleHeader(f, sheet, len(header)); err != nil {
		return err
	}
	return write(f, w)
}

// WriteRegisterSheet writes one row per register session plus the summary
// converted with the current rate.
func WriteRegisterSheet(w io.Writer, rep reporting.RegisterReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Register"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []any{"Cashier", "Opened", "Closed", "State", "Opening float", "Cash sales", "Card sales",
		"Expected", "Actual", "Difference", "Deviation", "Currency", "Rate", "Notes"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range rep.Sessions {
		closed := ""
		if s.ClosedAt != nil {
			closed = s.ClosedAt.Format("2006-01-02 15:04")
		}
		row := []any{s.CashierName, s.OpenedAt.Format("2006-01-02 15:04"), closed, s.State,
			s.OpeningFloat, s.SystemCashSales, s.SystemCardSales, s.ExpectedCash, s.ActualCash,
			s.Difference, s.Deviation, s.HistoricalCurrency.String(), s.HistoricalRate, s.Notes}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	sum := rep.Summary
	start := len(rep.Sessions) + 3
	lines := [][]any{
		{"Summary (" + sum.NormalizedCurrency.String() + ")"},
		{"Opening float", sum.OpeningFloat},
		{"Cash sales", sum.CashSales},
		{"Actual cash", sum.ActualCash},
		{"Difference", sum.Difference},
	}
	for i := range lines {
		if err := f.SetSheetRow(sheet, cell(1, start+i), &lines[i]); err != nil {
			return err
		}
	}
	if err := styleHeader(f, sheet, len(header)); err != nil {
		return err
	}
	return write(f, w)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cell(cols, 1), style); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(cols)
	return f.SetColWidth(sheet, "A", last, 14)
}

func write(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}
