package inputval

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsValidPaymentMethod(t *testing.T) {
	tests := []struct {
		method string
		want   bool
	}{
		{"cash", true},
		{"transfer", true},
		{"both", true},
		{"CASH", true},
		{"  Transfer ", true},

		{"", false},
		{"   ", false},
		{"card", false},
		{"efectivo", false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := IsValidPaymentMethod(tt.method)
			if got != tt.want {
				t.Errorf("IsValidPaymentMethod(%q) = %v, want %v", tt.method, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		// Valid URLs
		{"http://example.com", true},
		{"https://example.com", true},
		{"http://example.com/path", true},
		{"https://example.com/path?query=1", true},
		{"http://localhost:8080", true},
		{"https://sub.domain.example.com", true},

		// Valid with whitespace (trimmed)
		{"  https://example.com  ", true},

		// Invalid URLs
		{"", false},
		{"   ", false},
		{"ftp://example.com", false},
		{"mailto:user@example.com", false},
		{"example.com", false},
		{"//example.com", false},
		{"not a url", false},
		{"file:///path/to/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsValidHTTPURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		// Valid ObjectIDs (24 hex characters)
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"ffffffffffffffffffffffff", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true}, // uppercase hex is valid

		// Valid with whitespace (trimmed)
		{"  507f1f77bcf86cd799439011  ", true},

		// Invalid ObjectIDs
		{"", false},
		{"   ", false},
		{"507f1f77bcf86cd79943901", false},   // too short (23 chars)
		{"507f1f77bcf86cd7994390111", false}, // too long (25 chars)
		{"507f1f77bcf86cd79943901g", false},  // invalid hex char
		{"not-a-valid-id", false},
		{"12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "John", Email: "john@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "John", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Email: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("one error", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{{Message: "Error 1"}},
		}
		if r.All() != "Error 1" {
			t.Errorf("All() = %q, want %q", r.All(), "Error 1")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestResult_First(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.First() != "" {
			t.Errorf("First() = %q, want empty", r.First())
		}
	})

	t.Run("with errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "First error"},
				{Message: "Second error"},
			},
		}
		if r.First() != "First error" {
			t.Errorf("First() = %q, want %q", r.First(), "First error")
		}
	})
}

func TestValidate_CustomRules(t *testing.T) {
	type PaymentInput struct {
		Method string `validate:"required,paymentmethod" label:"Payment method"`
	}

	type CurrencyInput struct {
		Code string `validate:"required,currency" label:"Currency"`
	}

	type URLInput struct {
		URL string `validate:"required,httpurl" label:"Image URL"`
	}

	type IDInput struct {
		ID string `validate:"required,objectid" label:"Order ID"`
	}

	type OIDInput struct {
		ID primitive.ObjectID `validate:"objectid" label:"Cashier"`
	}

	t.Run("valid payment method", func(t *testing.T) {
		result := Validate(PaymentInput{Method: "both"})
		if result.HasErrors() {
			t.Errorf("Validate(valid payment) has errors: %v", result.Errors)
		}
	})

	t.Run("invalid payment method", func(t *testing.T) {
		result := Validate(PaymentInput{Method: "card"})
		if !result.HasErrors() {
			t.Error("Validate(invalid payment) should have errors")
		}
		if result.First() != "Payment method must be cash, transfer or both." {
			t.Errorf("unexpected message %q", result.First())
		}
	})

	t.Run("currency", func(t *testing.T) {
		if Validate(CurrencyInput{Code: "usd"}).HasErrors() {
			t.Error("lowercase usd should be accepted")
		}
		if !Validate(CurrencyInput{Code: "EUR"}).HasErrors() {
			t.Error("EUR should be rejected")
		}
	})

	t.Run("valid URL", func(t *testing.T) {
		result := Validate(URLInput{URL: "https://example.com"})
		if result.HasErrors() {
			t.Errorf("Validate(valid URL) has errors: %v", result.Errors)
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		result := Validate(URLInput{URL: "not-a-url"})
		if !result.HasErrors() {
			t.Error("Validate(invalid URL) should have errors")
		}
	})

	t.Run("valid ObjectID", func(t *testing.T) {
		result := Validate(IDInput{ID: "507f1f77bcf86cd799439011"})
		if result.HasErrors() {
			t.Errorf("Validate(valid ID) has errors: %v", result.Errors)
		}
	})

	t.Run("invalid ObjectID", func(t *testing.T) {
		result := Validate(IDInput{ID: "invalid-id"})
		if !result.HasErrors() {
			t.Error("Validate(invalid ID) should have errors")
		}
	})

	t.Run("nil ObjectID value", func(t *testing.T) {
		if !Validate(OIDInput{}).HasErrors() {
			t.Error("nil ObjectID should be rejected")
		}
		if Validate(OIDInput{ID: primitive.NewObjectID()}).HasErrors() {
			t.Error("fresh ObjectID should be accepted")
		}
	})
}

func TestResult_Err(t *testing.T) {
	if err := (&Result{}).Err(); err != nil {
		t.Errorf("Err() on empty result = %v, want nil", err)
	}

	err := Invalid("total", "Total must be greater than 0.")
	if !errors.Is(err, ErrInvalid) {
		t.Error("expected error to wrap ErrInvalid")
	}
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Fields()) != 1 || verr.Fields()[0].Field != "total" {
		t.Errorf("unexpected fields: %+v", err)
	}
}
