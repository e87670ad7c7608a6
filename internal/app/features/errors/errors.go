// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler answers requests no route claimed. Bodies use the same
// {"error": ...} shape as every other API error.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("no route", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	respond.NotFound(w, "route not found")
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
}
