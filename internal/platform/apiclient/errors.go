package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed (%d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

const maxMessageRunes = 200

// extractMessage pulls a human-readable reason out of an error body. Echo
// and ASP.NET backends use different field names for it.
func extractMessage(body []byte, status int) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"message", "title", "error", "detail"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
		return http.StatusText(status)
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil && plain != "" {
		trimmed = plain
	}
	if utf8.RuneCountInString(trimmed) > maxMessageRunes {
		trimmed = string([]rune(trimmed)[:maxMessageRunes]) + "..."
	}
	return trimmed
}
