// Package prompt provides interactive prompts for confirmation and
// secret entry.
package prompt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// HuhPrompter implements ports.Prompter with charmbracelet/huh forms.
type HuhPrompter struct{}

// NewHuhPrompter creates a new HuhPrompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

// Confirm asks a yes/no question.
func (p *HuhPrompter) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	confirmed := defaultYes

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Value(&confirmed),
	))

	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}

	return confirmed, nil
}

// Secret asks for a secret value with masked input. The value is never
// echoed.
func (p *HuhPrompter) Secret(ctx context.Context, message string) (string, error) {
	var value string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(message).
			EchoMode(huh.EchoModePassword).
			Value(&value),
	))

	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("secret prompt: %w", err)
	}

	if value == "" {
		return "", fmt.Errorf("secret prompt: value is required")
	}

	return value, nil
}

// YesPrompter answers every confirmation without asking, for
// non-interactive runs. Secret entry still fails: a missing credential
// cannot be assumed.
type YesPrompter struct{}

// NewYesPrompter creates a new YesPrompter.
func NewYesPrompter() *YesPrompter {
	return &YesPrompter{}
}

// Confirm answers yes without prompting.
func (p *YesPrompter) Confirm(_ context.Context, _ string, _ bool) (bool, error) {
	return true, nil
}

// Secret fails: secrets cannot be defaulted in non-interactive mode.
func (p *YesPrompter) Secret(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("no credential stored and prompts are disabled; run 'hostprep secret set' first")
}

// Ensure the prompters implement ports.Prompter.
var (
	_ ports.Prompter = (*HuhPrompter)(nil)
	_ ports.Prompter = (*YesPrompter)(nil)
)
