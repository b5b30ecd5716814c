package connectors

import (
	"fmt"
	"strings"
)

// APIError — ответ Relevance с не-2xx статусом.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("relevance: %s returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("relevance: %s returned status %d: %s", e.Operation, e.StatusCode, body)
}
