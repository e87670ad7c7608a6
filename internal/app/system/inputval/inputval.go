// internal/app/system/inputval/inputval.go
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/foodgestor/internal/domain/currency"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalid is wrapped by every error returned from Result.Err.
var ErrInvalid = errors.New("invalid input")

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			if j := strings.Split(f.Tag.Get("json"), ",")[0]; j != "" && j != "-" {
				return j
			}
			return f.Name
		})
		// Replaces the built-in rule so every email field shares IsValidEmail.
		_ = v.RegisterValidation("email", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			switch id := fl.Field().Interface().(type) {
			case primitive.ObjectID:
				return !id.IsZero()
			case string:
				return IsValidObjectID(id)
			}
			return false
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			_, err := currency.Parse(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
			return IsValidPaymentMethod(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
	})
	return v
}

// FieldError is one failed rule, already phrased for a person.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when there are no errors, otherwise an *Error.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &Error{Result: r}
}

// Error carries a failed Result through ordinary error returns.
type Error struct {
	Result *Result
}

func (e *Error) Error() string { return e.Result.All() }
func (e *Error) Unwrap() error { return ErrInvalid }

// Fields returns the per-field errors.
func (e *Error) Fields() []FieldError { return e.Result.Errors }

// Invalid builds an error for a single rule checked by hand.
func Invalid(field, message string) error {
	return (&Result{Errors: []FieldError{{Field: field, Message: message}}}).Err()
}

// Validate runs the struct's validate tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "objectid":
		return label + " must be a valid ID."
	case "currency":
		return label + " must be USD or NIO."
	case "paymentmethod":
		return label + " must be cash, transfer or both."
	case "httpurl":
		return label + " must be a valid http(s) URL."
	case "datetime":
		return fmt.Sprintf("%s must match %s.", label, fe.Param())
	}
	return label + " is invalid."
}

// IsValidEmail accepts a bare address (no display name) with a sane
// dot-atom local part.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func IsValidPaymentMethod(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range models.PaymentMethods {
		if s == m {
			return true
		}
	}
	return false
}
