package ports

import "context"

// Prompter collects interactive input from the operator.
// Implementations must never echo secret input back to the terminal.
type Prompter interface {
	// Confirm asks a yes/no question and returns the answer.
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)

	// Secret asks for a secret value with masked input.
	Secret(ctx context.Context, message string) (string, error)
}
