package mocks

import "github.com/felixgeelhaar/hostprep/internal/ports"

// Principal is a configurable test double for ports.Principal.
type Principal struct {
	IsPrivileged  bool
	PrincipalName string
}

// Privileged reports the configured privilege state.
func (m *Principal) Privileged() bool { return m.IsPrivileged }

// Name returns the configured principal name.
func (m *Principal) Name() string {
	if m.PrincipalName == "" {
		return "test-user"
	}
	return m.PrincipalName
}

// Ensure Principal implements ports.Principal.
var _ ports.Principal = (*Principal)(nil)
