package documents

import (
	"bytes"
	"testing"
	"time"

	invoicestore "github.com/dalemusser/foodgestor/internal/app/store/invoices"
	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteReceipt(t *testing.T) {
	issued := time.Date(2026, 3, 11, 20, 15, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteReceipt(&buf, ReceiptData{
		Restaurant: models.Restaurant{Name: "La Fonda", Address: "Calle 1", Phone: "555", Settings: models.DefaultSettings()},
		Invoice: models.Invoice{
			Number: "0042", PaymentMethod: models.PaymentCash, Subtotal: 20, Tip: 2, TipPercentage: 10,
			Total: 25, AmountPaid: 30, Change: 5, IssuedAt: issued,
			HistoricalCurrency: currency.USD, HistoricalRate: 36.6, CustomerName: "José",
		},
		Order: &models.Order{Number: 7, TableNumber: 3, Items: []models.OrderItem{
			{Name: "Gallo pinto con queso frito y maduro", Quantity: 2, Price: 10},
		}},
		Cashier: "maria",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output is not a PDF")
}

func TestWriteReceipt_NoOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReceipt(&buf, ReceiptData{
		Restaurant: models.Restaurant{Name: "La Fonda"},
		Invoice:    models.Invoice{Number: "0001", Total: 10, Subtotal: 10},
	}))
	assert.NotZero(t, buf.Len())
}

func TestWriteSalesSheet(t *testing.T) {
	rep := reporting.SalesReport{
		Rows: []invoicestore.SalesRow{
			{Number: "0002", Total: 100, Subtotal: 80, Tip: 5, Tax: 15, HistoricalCurrency: "NIO", HistoricalRate: 36.5, Waiter: "Ana"},
			{Number: "0001", Total: 10, Subtotal: 10, HistoricalCurrency: "USD", HistoricalRate: 36.5},
		},
		Total:    465,
		Currency: currency.NIO,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSalesSheet(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 5) // header, 2 rows, blank, footer
	assert.Equal(t, "Invoice", rows[0][0])
	assert.Equal(t, "0002", rows[1][0])
	assert.Equal(t, "Ana", rows[1][3])
	assert.Equal(t, "Total (NIO)", rows[4][0])
	assert.Equal(t, "465", rows[4][10])
}

func TestWriteRegisterSheet(t *testing.T) {
	closed := time.Date(2026, 3, 11, 22, 0, 0, 0, time.UTC)
	rep := reporting.RegisterReport{
		Sessions: []models.RegisterSession{{
			CashierName: "maria", OpenedAt: closed.Add(-8 * time.Hour), ClosedAt: &closed,
			State: models.RegisterClosed, OpeningFloat: 500, SystemCashSales: 450,
			ActualCash: 960, Difference: 10, Deviation: models.DeviationWarning,
			HistoricalCurrency: currency.NIO, HistoricalRate: 36.5,
		}},
		Summary: reporting.RegisterSummary{OpeningFloat: 500, CashSales: 450, ActualCash: 960, Difference: 10, NormalizedCurrency: currency.NIO},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRegisterSheet(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Register")
	require.NoError(t, err)
	assert.Equal(t, "maria", rows[1][0])
	assert.Equal(t, "2026-03-11 22:00", rows[1][2])
	assert.Equal(t, "Summary (NIO)", rows[3][0])
	assert.Equal(t, []string{"Difference", "10"}, rows[7])
}
