// Package credential persists and retrieves the provisioning secret.
package credential

// Credential is an opaque secret token. The zero value is empty.
// Its formatted representations are redacted so the secret cannot leak
// through logs or error messages.
type Credential struct {
	value string
}

// New creates a Credential from a raw secret value.
func New(value string) Credential {
	return Credential{value: value}
}

// Value returns the raw secret.
func (c Credential) Value() string {
	return c.value
}

// IsZero returns true if no secret is held.
func (c Credential) IsZero() bool {
	return c.value == ""
}

// String returns a redacted placeholder, never the secret.
func (c Credential) String() string {
	return "[redacted]"
}

// GoString returns a redacted placeholder, never the secret.
func (c Credential) GoString() string {
	return "credential.Credential{[redacted]}"
}
