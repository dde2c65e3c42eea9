package gong

import "fmt"

// APIError is a non-success response from the Gong API. Body holds the
// raw response body so callers can surface the upstream's own error
// payload.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gong: upstream returned %d: %s", e.StatusCode, truncate(string(e.Body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
