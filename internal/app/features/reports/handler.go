// internal/app/features/reports/handler.go
package reports

import (
	"errors"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/services/reporting"
	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler owns the sales and register reports and their spreadsheet
// exports. The reporting service is built once at startup so every report
// shares the business time zone.
type Handler struct {
	Reports *reporting.Service
	Log     *zap.Logger
}

func NewHandler(reports *reporting.Service, logger *zap.Logger) *Handler {
	return &Handler{Reports: reports, Log: logger}
}

var mappings = []respond.Mapping{
	{Err: reporting.ErrRestaurantNotFound, Status: http.StatusNotFound},
}

// reportError answers a failed report. A bad period or date range is the
// caller's mistake.
func (h *Handler) reportError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, reporting.ErrInvalidPeriod) {
		respond.StoreError(w, h.Log, op, inputval.Invalid("period",
			"Period must be today, yesterday, this_week, this_month or custom with valid YYYY-MM-DD dates."))
		return
	}
	respond.StoreError(w, h.Log, op, err, mappings...)
}
