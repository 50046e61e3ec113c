package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Prompter is a test double for ports.Prompter with canned answers.
type Prompter struct {
	mu sync.Mutex

	ConfirmAnswer bool
	ConfirmErr    error
	SecretAnswer  string
	SecretErr     error

	confirmCalls []string
	secretCalls  []string
}

// NewPrompter creates a Prompter that confirms everything and returns
// no secret until one is configured.
func NewPrompter() *Prompter {
	return &Prompter{ConfirmAnswer: true}
}

// Confirm records the message and returns the canned answer.
func (m *Prompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmCalls = append(m.confirmCalls, message)
	if m.ConfirmErr != nil {
		return false, m.ConfirmErr
	}
	return m.ConfirmAnswer, nil
}

// Secret records the message and returns the canned secret.
func (m *Prompter) Secret(_ context.Context, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secretCalls = append(m.secretCalls, message)
	if m.SecretErr != nil {
		return "", m.SecretErr
	}
	if m.SecretAnswer == "" {
		return "", errors.New("no secret configured")
	}
	return m.SecretAnswer, nil
}

// ConfirmCalls returns the recorded confirm messages.
func (m *Prompter) ConfirmCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.confirmCalls))
	copy(calls, m.confirmCalls)
	return calls
}

// SecretCalls returns the recorded secret prompt messages.
func (m *Prompter) SecretCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.secretCalls))
	copy(calls, m.secretCalls)
	return calls
}

// Ensure Prompter implements ports.Prompter.
var _ ports.Prompter = (*Prompter)(nil)
