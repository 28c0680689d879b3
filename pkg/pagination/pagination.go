package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// Params holds a window over a list. A zero Limit means "everything".
type Params struct {
	Limit  int
	Offset int
}

// All is the window that covers an entire list.
var All = Params{}

// New clamps limit and offset into a usable window.
func New(limit, offset int) Params {
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// FromContext extracts pagination parameters from the echo context. The
// second result is false when the request asked for no window at all, in
// which case list endpoints return every row.
func FromContext(c echo.Context) (Params, bool) {
	rawLimit := c.QueryParam("limit")
	rawOffset := c.QueryParam("offset")
	if rawLimit == "" && rawOffset == "" {
		return All, false
	}

	limit, _ := strconv.Atoi(rawLimit)
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset, _ := strconv.Atoi(rawOffset)
	return New(limit, offset), true
}

// Window returns the slice of items covered by p.
func Window[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		if p.Offset == 0 {
			return items
		}
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Limit > 0 && p.Offset+p.Limit < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

// NextOffset returns the offset for the next page.
func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

// PreviousOffset returns the offset for the previous page.
// Returns 0 if the result would be negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}

// Summary describes the window, e.g. "Showing 21-40 of 45".
func (p Params) Summary(total int) string {
	if total == 0 || p.Offset >= total {
		return fmt.Sprintf("Showing 0 of %d", total)
	}
	end := total
	if p.Limit > 0 && p.Offset+p.Limit < total {
		end = p.Offset + p.Limit
	}
	return fmt.Sprintf("Showing %d-%d of %d", p.Offset+1, end, total)
}

// TotalCountHeader carries the size of the full list when a window is served.
const TotalCountHeader = "X-Total-Count"

// JSON writes items as a JSON array. When the request carries limit/offset
// only that window is written and the full count goes in X-Total-Count.
func JSON[T any](c echo.Context, items []T) error {
	p, ok := FromContext(c)
	if !ok {
		return c.JSON(http.StatusOK, items)
	}
	c.Response().Header().Set(TotalCountHeader, strconv.Itoa(len(items)))
	return c.JSON(http.StatusOK, Window(items, p))
}
