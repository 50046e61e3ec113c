// Package script implements the remote-script provisioning action: an
// authenticated download, verified and executed as an opaque child
// process, with the temporary file cleaned up on every exit path.
package script

import (
	"fmt"
	"time"
)

// AuthError indicates the action had no credential to attach.
type AuthError struct {
	URL string
}

// Error returns the formatted error message.
func (e *AuthError) Error() string {
	return fmt.Sprintf("no credential available for %s", e.URL)
}

// NetworkError indicates the download failed: transport error or a
// non-2xx response.
type NetworkError struct {
	URL string
	Err error
}

// Error returns the formatted error message.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IntegrityError indicates the downloaded payload was empty or did not
// match its expected checksum.
type IntegrityError struct {
	URL    string
	Reason string
}

// Error returns the formatted error message.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check for %s: %s", e.URL, e.Reason)
}

// ExecutionError indicates the script exited non-zero.
type ExecutionError struct {
	URL      string
	ExitCode int
}

// Error returns the formatted error message.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("script %s exited with code %d", e.URL, e.ExitCode)
}

// TimeoutError indicates the script did not finish within the allowed time.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("script %s timed out after %s", e.URL, e.Timeout)
}
