package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCmd_FlagDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flag     string
		expected string
	}{
		{"registry", "hostprep.yaml"},
		{"yes-to-all", "false"},
		{"timeout", "0"},
		{"dry-run", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			t.Parallel()
			f := runCmd.Flags().Lookup(tt.flag)
			assert.NotNil(t, f)
			assert.Equal(t, tt.expected, f.DefValue)
		})
	}
}

func TestRunCmd_Shorthands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "r", runCmd.Flags().Lookup("registry").Shorthand)
	assert.Equal(t, "y", runCmd.Flags().Lookup("yes-to-all").Shorthand)
}

func TestPlanCmd_RegistryFlag(t *testing.T) {
	t.Parallel()

	f := planCmd.Flags().Lookup("registry")
	assert.NotNil(t, f)
	assert.Equal(t, "hostprep.yaml", f.DefValue)
}

func TestSecretCmd_Subcommands(t *testing.T) {
	t.Parallel()

	want := map[string]bool{"set": false, "check": false, "path": false}
	for _, cmd := range secretCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "secret %s should exist", name)
	}
}
