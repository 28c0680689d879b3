package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

// Field binds one named form input to the payload P.
type Field[P any] struct {
	Name  string
	Usage string
	Get   func(P) string
	Set   func(*P, string) error
}

// Form is an ordered set of fields. The same definition drives command-line
// flags and pre-filling from an existing record.
type Form[P any] []Field[P]

// Fill sets every named value on p. Unknown names are an error.
func (f Form[P]) Fill(p *P, values map[string]string) error {
	for name, v := range values {
		field, ok := f.field(name)
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		if err := field.Set(p, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Values returns p's fields in form order.
func (f Form[P]) Values(p P) map[string]string {
	out := make(map[string]string, len(f))
	for _, field := range f {
		out[field.Name] = field.Get(p)
	}
	return out
}

// Names lists the field names in form order.
func (f Form[P]) Names() []string {
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = field.Name
	}
	return names
}

func (f Form[P]) field(name string) (Field[P], bool) {
	for _, field := range f {
		if field.Name == name {
			return field, true
		}
	}
	return Field[P]{}, false
}

// Binding ties a form to the flags registered for it.
type Binding[P any] struct {
	form   Form[P]
	fs     *pflag.FlagSet
	values map[string]*string
}

// Bind registers one string flag per field on fs.
func (f Form[P]) Bind(fs *pflag.FlagSet) *Binding[P] {
	b := &Binding[P]{form: f, fs: fs, values: make(map[string]*string, len(f))}
	for _, field := range f {
		b.values[field.Name] = fs.String(field.Name, "", field.Usage)
	}
	return b
}

// Apply copies the flags the user actually set onto base. Unset flags keep
// base's values, so an edit only changes what was given.
func (b *Binding[P]) Apply(base P) (P, error) {
	for _, field := range b.form {
		if !b.fs.Changed(field.Name) {
			continue
		}
		if err := field.Set(&base, *b.values[field.Name]); err != nil {
			return base, fmt.Errorf("--%s: %w", field.Name, err)
		}
	}
	return base, nil
}

// Text binds a string field.
func Text[P any](name, usage string, ref func(*P) *string) Field[P] {
	return Field[P]{
		Name:  name,
		Usage: usage,
		Get:   func(p P) string { return *ref(&p) },
		Set: func(p *P, v string) error {
			*ref(p) = strings.TrimSpace(v)
			return nil
		},
	}
}

// Secret binds a string field that is never echoed back.
func Secret[P any](name, usage string, ref func(*P) *string) Field[P] {
	f := Text(name, usage, ref)
	f.Get = func(P) string { return "" }
	f.Set = func(p *P, v string) error {
		*ref(p) = v
		return nil
	}
	return f
}

// ID binds an identifier field.
func ID[P any](name, usage string, ref func(*P) *int64) Field[P] {
	return Field[P]{
		Name:  name,
		Usage: usage,
		Get: func(p P) string {
			if v := *ref(&p); v != 0 {
				return strconv.FormatInt(v, 10)
			}
			return ""
		},
		Set: func(p *P, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ref(p) = 0
				return nil
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", v)
			}
			*ref(p) = n
			return nil
		},
	}
}

// Amount binds a decimal field.
func Amount[P any](name, usage string, ref func(*P) *float64) Field[P] {
	return Field[P]{
		Name:  name,
		Usage: usage,
		Get:   func(p P) string { return strconv.FormatFloat(*ref(&p), 'f', 2, 64) },
		Set: func(p *P, v string) error {
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", v)
			}
			*ref(p) = n
			return nil
		},
	}
}

// Timestamp binds a required date/time field.
func Timestamp[P any](name, usage string, ref func(*P) *jsontime.Time) Field[P] {
	return Field[P]{
		Name:  name,
		Usage: usage,
		Get: func(p P) string {
			t := *ref(&p)
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02T15:04")
		},
		Set: func(p *P, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ref(p) = jsontime.Time{}
				return nil
			}
			t, err := jsontime.Parse(v)
			if err != nil {
				return err
			}
			*ref(p) = t
			return nil
		},
	}
}

// OptionalDate binds a date field that may be left empty.
func OptionalDate[P any](name, usage string, ref func(*P) **jsontime.Time) Field[P] {
	return Field[P]{
		Name:  name,
		Usage: usage,
		Get:   func(p P) string { return Day(*ref(&p)) },
		Set: func(p *P, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ref(p) = nil
				return nil
			}
			t, err := jsontime.Parse(v)
			if err != nil {
				return err
			}
			*ref(p) = &t
			return nil
		},
	}
}
