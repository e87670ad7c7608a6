package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"caja1@lafritanga.com.ni", true},
		{"rosa.lopez@restaurante.ni", true},
		{"pedidos+mesa4@fritanga.com", true},
		{"gerente@cocina.example.com", true},
		{"dev@localhost", true},

		{"", false},
		{"   ", false},
		{"caja1", false},
		{"caja1@", false},
		{"@restaurante.ni", false},
		{".rosa@restaurante.ni", false},
		{"rosa.@restaurante.ni", false},
		{"rosa..lopez@restaurante.ni", false},
		{"rosa@.restaurante.ni", false},
		{"rosa@restaurante..ni", false},
		{"Rosa López <rosa@restaurante.ni>", false},
		{"rosa @restaurante.ni", false},
		{"rosa@resta urante.ni", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

// The email tag on request structs goes through IsValidEmail.
func TestValidate_EmailTag(t *testing.T) {
	type employeeInput struct {
		Username string  `validate:"required" label:"Username"`
		Email    *string `validate:"omitempty,email,max=254" label:"Email"`
	}
	str := func(s string) *string { return &s }

	tests := []struct {
		name  string
		email *string
		ok    bool
	}{
		{"no email", nil, true},
		{"plain address", str("mesero@fritanga.com"), true},
		{"single-label domain", str("caja@localhost"), true},
		{"consecutive dots", str("ana..perez@fritanga.com"), false},
		{"display name", str("Ana <ana@fritanga.com>"), false},
		{"trailing dot in local part", str("ana.@fritanga.com"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(employeeInput{Username: "ana", Email: tt.email})
			if res.HasErrors() == tt.ok {
				t.Fatalf("Validate() errors = %v, want ok=%v", res.Errors, tt.ok)
			}
			if !tt.ok && res.First() != "A valid email address is required." {
				t.Errorf("First() = %q", res.First())
			}
		})
	}
}
