// internal/app/features/invoices/receipt.go
package invoices

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	orderstore "github.com/dalemusser/foodgestor/internal/app/store/orders"
	userstore "github.com/dalemusser/foodgestor/internal/app/store/users"
	"github.com/dalemusser/foodgestor/internal/app/system/documents"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeReceipt handles GET /api/invoices/{id}/receipt and renders a PDF.
// A deleted order or cashier still yields a receipt without those parts.
func (h *Handler) ServeReceipt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	rest, err := h.Restaurants.GetByID(ctx, inv.RestaurantID)
	if err != nil {
		respond.StoreError(w, h.Log, "load restaurant", err, noRestaurant)
		return
	}
	data := documents.ReceiptData{Restaurant: rest, Invoice: inv}

	if !inv.OrderID.IsZero() {
		o, err := h.Orders.GetByID(ctx, inv.OrderID)
		switch {
		case err == nil:
			data.Order = &o
		case !errors.Is(err, orderstore.ErrNotFound):
			respond.StoreError(w, h.Log, "load order", err)
			return
		}
	}
	if u, err := h.Users.GetByID(ctx, inv.CashierID); err == nil {
		data.Cashier = u.Username
	} else if !errors.Is(err, userstore.ErrNotFound) {
		h.Log.Warn("receipt cashier lookup failed", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := documents.WriteReceipt(&buf, data); err != nil {
		respond.StoreError(w, h.Log, "render receipt", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="invoice-%s.pdf"`, inv.Number))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
