// Package httpfetch downloads remote script bodies over HTTPS with
// bearer-token authentication.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Downloaded scripts are small; anything larger is suspicious.
const maxBodyBytes = 16 * 1024 * 1024

// Client implements ports.ScriptFetcher over net/http.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a fetcher with a sane default timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a fetcher using the given http.Client.
func NewClientWithHTTP(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Fetch downloads url with the token attached as a bearer credential.
// Non-2xx responses are errors.
func (c *Client) Fetch(ctx context.Context, url, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ports.HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

// Ensure Client implements ports.ScriptFetcher.
var _ ports.ScriptFetcher = (*Client)(nil)
