// internal/app/features/reports/sales.go
package reports

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	"github.com/dalemusser/foodgestor/internal/app/system/authz"
	"github.com/dalemusser/foodgestor/internal/app/system/documents"
	"github.com/dalemusser/foodgestor/internal/app/system/formutil"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"github.com/dalemusser/foodgestor/internal/app/system/timeouts"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func salesQuery(r *http.Request) (reporting.SalesQuery, error) {
	q := reporting.SalesQuery{
		Period:       formutil.Query(r, "period"),
		From:         formutil.Query(r, "from"),
		To:           formutil.Query(r, "to"),
		EmployeeName: formutil.Query(r, "employee"),
	}
	if formutil.Query(r, "table") != "" {
		n, ok := formutil.IntQuery(r, "table")
		if !ok || n < 1 {
			return q, inputval.Invalid("table", "Table must be a positive number.")
		}
		q.TableNumber = n
	}
	return q, nil
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) (reporting.SalesReport, bool) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return reporting.SalesReport{}, false
	}
	q, err := salesQuery(r)
	if err != nil {
		respond.StoreError(w, h.Log, "parse sales query", err)
		return reporting.SalesReport{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rep, err := h.Reports.SalesReport(ctx, restID, q)
	if err != nil {
		h.reportError(w, "sales report", err)
		return reporting.SalesReport{}, false
	}
	return rep, true
}

// ServeSales handles GET /api/reports/sales?period=&from=&to=&employee=&table=.
func (h *Handler) ServeSales(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.sales(w, r)
	if !ok {
		return
	}
	respond.OK(w, rep)
}

// ServeSalesXLSX handles GET /api/reports/sales.xlsx with the same filters.
func (h *Handler) ServeSalesXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.sales(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := documents.WriteSalesSheet(&buf, rep); err != nil {
		respond.StoreError(w, h.Log, "render sales sheet", err)
		return
	}
	attachment(w, fmt.Sprintf("sales-%s-%s.xlsx", rep.From.Format("20060102"), rep.To.Format("20060102")), &buf)
}

// ServeRegister handles GET /api/reports/register?from=&to=&cashier=.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.register(w, r)
	if !ok {
		return
	}
	respond.OK(w, rep)
}

func (h *Handler) ServeRegisterXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.register(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := documents.WriteRegisterSheet(&buf, rep); err != nil {
		respond.StoreError(w, h.Log, "render register sheet", err)
		return
	}
	attachment(w, "register-sessions.xlsx", &buf)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) (reporting.RegisterReport, bool) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return reporting.RegisterReport{}, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rep, err := h.Reports.RegisterReport(ctx, restID, reporting.RegisterQuery{
		From:        formutil.Query(r, "from"),
		To:          formutil.Query(r, "to"),
		CashierName: formutil.Query(r, "cashier"),
	})
	if err != nil {
		h.reportError(w, "register report", err)
		return reporting.RegisterReport{}, false
	}
	return rep, true
}

// ServeInfo handles GET /api/reports/info, the monthly overview.
func (h *Handler) ServeInfo(w http.ResponseWriter, r *http.Request) {
	restID, ok := authz.Scope(r, formutil.Query(r, "restaurant_id"))
	if !ok {
		respond.Forbidden(w, "access denied")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	info, err := h.Reports.InfoDashboard(ctx, restID)
	if err != nil {
		h.reportError(w, "info dashboard", err)
		return
	}
	respond.OK(w, info)
}

func attachment(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
