package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// FetchCall records one fetch invocation. The token is kept so tests can
// assert the credential was attached.
type FetchCall struct {
	URL   string
	Token string
}

// Fetcher is a thread-safe test double for ports.ScriptFetcher.
type Fetcher struct {
	mu     sync.RWMutex
	bodies map[string][]byte
	errors map[string]error
	calls  []FetchCall
}

// NewFetcher creates a new Fetcher mock.
func NewFetcher() *Fetcher {
	return &Fetcher{
		bodies: make(map[string][]byte),
		errors: make(map[string]error),
	}
}

// AddBody registers a response body for a URL.
func (m *Fetcher) AddBody(url string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[url] = body
}

// AddError registers an error for a URL.
func (m *Fetcher) AddError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[url] = err
}

// Fetch returns the registered body or error for the URL.
func (m *Fetcher) Fetch(_ context.Context, url, token string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, FetchCall{URL: url, Token: token})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errors[url]; ok {
		return nil, err
	}
	if body, ok := m.bodies[url]; ok {
		return body, nil
	}
	return nil, fmt.Errorf("no mock body for url: %s", url)
}

// Calls returns all recorded fetch invocations.
func (m *Fetcher) Calls() []FetchCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]FetchCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Ensure Fetcher implements ports.ScriptFetcher.
var _ ports.ScriptFetcher = (*Fetcher)(nil)
