package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500 carrying the same
// {"message": ...} body as every other API error. The panic is logged with
// the request id and stack.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				logger.Error().
					Str("request_id", requestID(c)).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				if c.Response().Committed {
					err = nil
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
			}()
			return next(c)
		}
	}
}

// requestID returns the id RequestID assigned, falling back to the
// response header when the context value is missing.
func requestID(c echo.Context) string {
	if rid, ok := c.Get("request_id").(string); ok && rid != "" {
		return rid
	}
	return c.Response().Header().Get(RequestIDHeader)
}
