package ports

import (
	"context"
	"fmt"
)

// ScriptFetcher downloads a script body over HTTPS.
// The token is attached as a bearer credential on the outbound request.
type ScriptFetcher interface {
	Fetch(ctx context.Context, url, token string) ([]byte, error)
}

// HTTPStatusError reports a non-2xx response from a fetch.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

// Error returns the formatted error message.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}
