// Package jsontime decodes the timestamp shapes the clinic backend emits.
// Dates arrive as RFC 3339, as zone-less "2006-01-02T15:04:05[.fffffff]"
// values, or as bare dates; all of them must round-trip through JSON.
package jsontime

import (
	"bytes"
	"fmt"
	"time"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Time is a time.Time with lenient JSON decoding. Zone-less values are read
// as UTC.
type Time struct {
	time.Time
}

// New wraps t.
func New(t time.Time) Time {
	return Time{Time: t}
}

// Ptr wraps t and returns a pointer, for optional fields.
func Ptr(t time.Time) *Time {
	v := New(t)
	return &v
}

// Parse accepts any of the supported layouts.
func Parse(s string) (Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognised time %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("time must be a JSON string, got %s", data)
	}
	s := string(data[1 : len(data)-1])
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date formats the value as a calendar date, or "" when unset.
func (t Time) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Stamp formats the value as date and minute, or "" when unset.
func (t Time) Stamp() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
