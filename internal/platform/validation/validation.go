// Package validation runs the pre-submission checks declared with
// `validate:` struct tags and turns them into messages a form can show.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their wire name so messages line up with form labels.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
	return validate
}

// FieldError describes one failed rule on one field.
type FieldError struct {
	Field string
	Rule  string
	Param string
	Kind  reflect.Kind
}

// Message renders the field error the way the forms display it.
func (f FieldError) Message() string {
	switch f.Rule {
	case "required":
		return fmt.Sprintf("%s is required", f.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f.Field)
	case "min":
		if f.Kind == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f.Field, f.Param)
		}
		return fmt.Sprintf("%s must be at least %s", f.Field, f.Param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f.Field, f.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f.Field, f.Param)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", f.Field, f.Param)
	}
	return fmt.Sprintf("%s is invalid", f.Field)
}

// Error collects every field that failed validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed any rule.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Struct validates s. It returns nil, a *Error, or the validator's own error
// when s is not a struct.
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Kind:  fe.Kind(),
		})
	}
	return out
}

// IsValidation reports whether err carries field-level validation failures.
func IsValidation(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}
