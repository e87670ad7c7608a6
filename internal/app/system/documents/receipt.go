// internal/app/system/documents/receipt.go
package documents

// Receipts are laid out for 74mm x 105mm thermal-style paper:
//   - restaurant header
//   - invoice number, date and table
//   - one line per order item
//   - subtotal, tip, tax and bold total
//   - amount received and change

import (
	"fmt"
	"io"

	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptData is what a receipt prints. Order may be nil when the order
// was deleted after invoicing.
type ReceiptData struct {
	Restaurant models.Restaurant
	Invoice    models.Invoice
	Order      *models.Order
	Cashier    string
}

// WriteReceipt renders the invoice receipt as PDF into w. Amounts are
// printed in the invoice's frozen currency.
func WriteReceipt(w io.Writer, d ReceiptData) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105 + float64(itemCount(d.Order))*4},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	code := d.Invoice.HistoricalCurrency
	if !code.Valid() {
		code = d.Restaurant.CurrentCurrency()
	}
	money := func(v float64) string {
		return code.Symbol() + decimal.NewFromFloat(v).StringFixed(2)
	}

	// header
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(d.Restaurant.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if d.Restaurant.Address != "" {
		pdf.CellFormat(contentW, 4, tr(d.Restaurant.Address), "", 1, "C", false, 0, "")
	}
	if d.Restaurant.Phone != "" {
		pdf.CellFormat(contentW, 4, tr("Tel. "+d.Restaurant.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	// invoice info
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Invoice #"+d.Invoice.Number, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, d.Invoice.IssuedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if d.Order != nil {
		where := "Takeout"
		if !d.Order.IsTakeout() {
			where = fmt.Sprintf("Table %d", d.Order.TableNumber)
		}
		pdf.CellFormat(contentW, 4, fmt.Sprintf("Order #%d - %s", d.Order.Number, where), "", 1, "L", false, 0, "")
	}
	if d.Invoice.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Customer: "+d.Invoice.CustomerName), "", 1, "L", false, 0, "")
	}
	if d.Cashier != "" {
		pdf.CellFormat(contentW, 4, tr("Cashier: "+d.Cashier), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	if d.Order != nil && len(d.Order.Items) > 0 {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 7)
		for _, it := range d.Order.Items {
			pdf.CellFormat(col1, 4, tr(truncate(it.Name, 22)), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 4, fmt.Sprintf("x%d", it.Quantity), "", 0, "C", false, 0, "")
			pdf.CellFormat(col3, 4, money(it.Price*float64(it.Quantity)), "", 1, "R", false, 0, "")
		}
		pdf.Ln(1)
		pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
		pdf.Ln(1)
	}

	line := func(label, value string) {
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, value, "", 1, "R", false, 0, "")
	}

	inv := d.Invoice
	tax := inv.Total - (inv.Subtotal + inv.Tip)
	pdf.SetFont("Helvetica", "", 7)
	line("Subtotal:", money(inv.Subtotal))
	if inv.Tip != 0 {
		line(fmt.Sprintf("Tip (%s%%):", decimal.NewFromFloat(inv.TipPercentage).String()), money(inv.Tip))
	}
	if tax > 0.005 {
		line("Tax:", money(tax))
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, money(inv.Total), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	line("Payment ("+inv.PaymentMethod+"):", money(inv.AmountPaid))
	line("Change:", money(inv.Change))
	if code == currency.USD {
		line("Rate:", fmt.Sprintf("1 USD = %s NIO", decimal.NewFromFloat(inv.HistoricalRate).StringFixed(2)))
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your visit!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write receipt: %w", err)
	}
	return nil
}

func itemCount(o *models.Order) int {
	if o == nil {
		return 0
	}
	return len(o.Items)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
