package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	valid := []string{"qemu-guest-agent", "nfs-common", "libssl1.1", "g++", "curl"}
	for _, name := range valid {
		if err := ValidatePackageName(name); err != nil {
			t.Errorf("ValidatePackageName(%q) error = %v", name, err)
		}
	}

	tests := []struct {
		name    string
		wantErr error
	}{
		{"", ErrEmptyInput},
		{"Curl", ErrInvalidPackageName},
		{"curl; rm -rf /", ErrInvalidPackageName},
		{"curl && true", ErrInvalidPackageName},
		{"$(whoami)", ErrInvalidPackageName},
		{strings.Repeat("a", 300), ErrInvalidPackageName},
	}
	for _, tt := range tests {
		if err := ValidatePackageName(tt.name); !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidatePackageName(%q) error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateDeviceName(t *testing.T) {
	valid := []string{"ubuntu-vg", "/dev/ubuntu-vg/ubuntu-lv", "/dev/mapper/vg0-data", "vg_data"}
	for _, name := range valid {
		if err := ValidateDeviceName(name); err != nil {
			t.Errorf("ValidateDeviceName(%q) error = %v", name, err)
		}
	}

	invalid := []string{"", "vg; reboot", "vg data", "vg`id`"}
	for _, name := range invalid {
		if err := ValidateDeviceName(name); err == nil {
			t.Errorf("ValidateDeviceName(%q) should fail", name)
		}
	}
}

func TestValidateServiceName(t *testing.T) {
	valid := []string{"ssh", "sshd.service", "getty@tty1"}
	for _, name := range valid {
		if err := ValidateServiceName(name); err != nil {
			t.Errorf("ValidateServiceName(%q) error = %v", name, err)
		}
	}

	invalid := []string{"", "ssh; true", "ssh sshd"}
	for _, name := range invalid {
		if err := ValidateServiceName(name); err == nil {
			t.Errorf("ValidateServiceName(%q) should fail", name)
		}
	}
}

func TestValidateDirective(t *testing.T) {
	valid := []string{"PasswordAuthentication", "PermitRootLogin", "Port"}
	for _, keyword := range valid {
		if err := ValidateDirective(keyword); err != nil {
			t.Errorf("ValidateDirective(%q) error = %v", keyword, err)
		}
	}

	invalid := []string{"", "Password Authentication", "Port\n22", "1Port"}
	for _, keyword := range invalid {
		if err := ValidateDirective(keyword); err == nil {
			t.Errorf("ValidateDirective(%q) should fail", keyword)
		}
	}
}

func TestValidateDirectiveValue(t *testing.T) {
	if err := ValidateDirectiveValue("prohibit-password"); err != nil {
		t.Errorf("ValidateDirectiveValue error = %v", err)
	}
	if err := ValidateDirectiveValue("no\nPermitRootLogin yes"); err == nil {
		t.Error("value with a line break should be rejected")
	}
}
