package db

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Counter is the part of a Table the health check reads.
type Counter interface {
	Name() string
	Len() int
}

// TableStats reports the size of one table.
type TableStats struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// GetTableStats returns row counts for tables in the order given.
func GetTableStats(tables ...Counter) []TableStats {
	out := make([]TableStats, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableStats{Name: t.Name(), Rows: t.Len()})
	}
	return out
}

// HealthHandler returns a handler for the health check endpoint.
func HealthHandler(tables ...Counter) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"tables": GetTableStats(tables...),
		})
	}
}
