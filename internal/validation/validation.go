// Package validation provides input validation utilities.
// Manifest values end up as arguments to privileged commands, so anything
// that could smuggle shell syntax is rejected before execution.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors.
var (
	ErrEmptyInput         = errors.New("input cannot be empty")
	ErrInvalidPackageName = errors.New("invalid package name")
	ErrInvalidDeviceName  = errors.New("invalid device name")
	ErrInvalidServiceName = errors.New("invalid service name")
	ErrInvalidDirective   = errors.New("invalid sshd directive")
	ErrCommandInjection   = errors.New("input contains shell metacharacters")
)

var (
	// packageNameRegex matches valid apt package names.
	// Examples: "qemu-guest-agent", "nfs-common", "libssl1.1"
	packageNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9+._-]*$`)

	// deviceNameRegex matches LVM volume group and logical volume names,
	// including mapper paths like "/dev/ubuntu-vg/ubuntu-lv".
	deviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9/][a-zA-Z0-9/_.+-]*$`)

	// serviceNameRegex matches systemd unit names like "ssh" or "sshd.service".
	serviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9@._-]*$`)

	// directiveRegex matches sshd_config directive keywords.
	directiveRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

	// shellMetaChars contains shell metacharacters that could enable injection.
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\", " "}
)

// ValidatePackageName validates an apt package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}

	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q", ErrCommandInjection, name)
	}

	return nil
}

// ValidateDeviceName validates an LVM volume group or logical volume name.
func ValidateDeviceName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if !deviceNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidDeviceName, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q", ErrCommandInjection, name)
	}

	return nil
}

// ValidateServiceName validates a systemd service name.
func ValidateServiceName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if !serviceNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidServiceName, name)
	}

	return nil
}

// ValidateDirective validates an sshd_config directive keyword.
func ValidateDirective(keyword string) error {
	if keyword == "" {
		return ErrEmptyInput
	}

	if !directiveRegex.MatchString(keyword) {
		return fmt.Errorf("%w: %q", ErrInvalidDirective, keyword)
	}

	return nil
}

// ValidateDirectiveValue rejects values that could inject extra
// configuration lines.
func ValidateDirectiveValue(value string) error {
	if strings.ContainsAny(value, "\n\r\x00") {
		return fmt.Errorf("%w: value contains line break", ErrInvalidDirective)
	}
	return nil
}

// containsShellMeta checks for shell metacharacters.
func containsShellMeta(s string) bool {
	for _, c := range shellMetaChars {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}
