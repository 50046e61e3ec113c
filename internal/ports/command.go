// Package ports defines interfaces for external collaborators.
package ports

import (
	"context"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// CommandRunner executes shell commands with captured output.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}

// ScriptExecutor runs a local executable as a child process with the
// host's environment, inheriting stdout and stderr so the operator can
// watch its progress. Returns the child's exit code. The context controls
// cancellation and timeout; on expiry the child is terminated.
type ScriptExecutor interface {
	ExecScript(ctx context.Context, path string) (int, error)
}
