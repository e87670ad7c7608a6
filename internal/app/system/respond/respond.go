// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/foodgestor/internal/app/system/limits"
	"go.uber.org/zap"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error  string                `json:"error"`
	Fields []inputval.FieldError `json:"fields,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, v any)      { JSON(w, http.StatusOK, v) }
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

func BadRequest(w http.ResponseWriter, msg string)   { Error(w, http.StatusBadRequest, msg) }
func Unauthorized(w http.ResponseWriter, msg string) { Error(w, http.StatusUnauthorized, msg) }
func Forbidden(w http.ResponseWriter, msg string)    { Error(w, http.StatusForbidden, msg) }
func NotFound(w http.ResponseWriter, msg string)     { Error(w, http.StatusNotFound, msg) }
func Conflict(w http.ResponseWriter, msg string)     { Error(w, http.StatusConflict, msg) }

// Mapping ties a sentinel error to a status and client message. An empty
// Message uses err.Error().
type Mapping struct {
	Err     error
	Status  int
	Message string
}

// StoreError writes the response for err. Validation errors become 400
// with per-field details; mapped sentinels use their status; anything else
// is logged and reported as a generic 500.
func StoreError(w http.ResponseWriter, log *zap.Logger, op string, err error, mappings ...Mapping) {
	var verr *inputval.Error
	if errors.As(err, &verr) {
		JSON(w, http.StatusBadRequest, ErrorBody{Error: verr.Result.First(), Fields: verr.Fields()})
		return
	}
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = m.Err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Decode reads a JSON body of at most 1 MiB into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBody))
	if err := dec.Decode(v); err != nil {
		return inputval.Invalid("body", "Request body is not valid JSON.")
	}
	return nil
}
