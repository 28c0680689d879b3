package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

// Column is one table column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// WriteTable writes rows as aligned columns under a header line.
func WriteTable[T any](w io.Writer, cols []Column[T], rows []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	cells := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			cells[i] = oneLine(c.Value(row))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteRecord writes one row as "Header: value" lines.
func WriteRecord[T any](w io.Writer, cols []Column[T], row T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, c := range cols {
		fmt.Fprintf(tw, "%s:\t%s\n", c.Header, oneLine(c.Value(row)))
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Short formats a timestamp the way the tables show it.
func Short(t jsontime.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("1/2/06, 3:04 PM")
}

// Day formats a date-only value.
func Day(t *jsontime.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
