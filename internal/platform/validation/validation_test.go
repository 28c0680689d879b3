package validation

import (
	"strings"
	"testing"
)

type signup struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role" validate:"oneof=User Admin"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

func TestStruct_Valid(t *testing.T) {
	s := signup{Username: "u1", Email: "u1@x.com", Password: "secret", Role: "User"}
	if err := Struct(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	s := signup{Email: "nope", Password: "abc", Role: "Root", Amount: -1}
	err := Struct(s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidation(err) {
		t.Fatalf("expected *Error, got %T", err)
	}

	verr := err.(*Error)
	for _, field := range []string{"username", "email", "password", "role", "amount"} {
		if !verr.Has(field) {
			t.Errorf("expected failure on %s, got %v", field, verr.Fields)
		}
	}
}

func TestFieldError_Messages(t *testing.T) {
	err := Struct(signup{Email: "u1@x.com", Password: "abc", Role: "User"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "username is required") {
		t.Errorf("missing required message in %q", msg)
	}
	if !strings.Contains(msg, "password must be at least 6 characters") {
		t.Errorf("missing min length message in %q", msg)
	}
}

func TestStruct_NonStruct(t *testing.T) {
	if err := Struct(42); err == nil {
		t.Fatal("expected error for non-struct")
	} else if IsValidation(err) {
		t.Error("non-struct input should not produce field errors")
	}
}
