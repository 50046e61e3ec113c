package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Executor is a test double for ports.ScriptExecutor.
type Executor struct {
	mu sync.Mutex

	ExitCode int
	Err      error
	// BlockUntilCancel makes ExecScript wait on the context, which lets
	// tests exercise deadline handling.
	BlockUntilCancel bool

	paths []string
}

// ExecScript records the path and returns the canned result.
func (m *Executor) ExecScript(ctx context.Context, path string) (int, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.BlockUntilCancel {
		<-ctx.Done()
		return -1, ctx.Err()
	}
	return m.ExitCode, m.Err
}

// Paths returns the script paths passed to ExecScript.
func (m *Executor) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, len(m.paths))
	copy(paths, m.paths)
	return paths
}

// Ensure Executor implements ports.ScriptExecutor.
var _ ports.ScriptExecutor = (*Executor)(nil)
