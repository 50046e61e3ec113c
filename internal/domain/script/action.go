package script

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/credential"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Action downloads, verifies, and executes a remote installer script as
// one provisioning step. The downloaded script is treated as an opaque,
// untrusted external program: the action's responsibility ends at
// "executed with code C".
//
// The temporary file holding the script body is scoped to a single Apply:
// it is created and removed within the same call, on every exit path,
// including timeout and cancellation.
type Action struct {
	id       step.StepID
	deps     []step.StepID
	name     string
	url      string
	checksum string // optional hex-encoded SHA-256 of the script body
	creates  string // optional path whose existence satisfies the precondition

	cred    credential.Credential
	fetcher ports.ScriptFetcher
	exec    ports.ScriptExecutor
	fs      ports.FileSystem
	timeout time.Duration

	mu        sync.Mutex
	lastPhase Phase
}

// Config holds the declarative definition of a remote script action.
type Config struct {
	Name     string
	URL      string
	Checksum string
	Creates  string
	Deps     []step.StepID
	Timeout  time.Duration
}

// NewAction creates a remote script action. The credential is borrowed:
// the action attaches it to outbound requests but does not own or rotate
// it.
func NewAction(cfg Config, cred credential.Credential, fetcher ports.ScriptFetcher, exec ports.ScriptExecutor, fs ports.FileSystem) *Action {
	return &Action{
		id:        step.MustNewStepID("script:run:" + cfg.Name),
		deps:      cfg.Deps,
		name:      cfg.Name,
		url:       cfg.URL,
		checksum:  strings.ToLower(strings.TrimSpace(cfg.Checksum)),
		creates:   cfg.Creates,
		cred:      cred,
		fetcher:   fetcher,
		exec:      exec,
		fs:        fs,
		timeout:   cfg.Timeout,
		lastPhase: PhaseIdle,
	}
}

// ID returns the step identifier.
func (a *Action) ID() step.StepID {
	return a.id
}

// DependsOn returns the step dependencies.
func (a *Action) DependsOn() []step.StepID {
	return a.deps
}

// Check determines whether the script's effect is already present.
// Without a declared artifact path the script cannot prove idempotence,
// so it always runs.
func (a *Action) Check(_ step.RunContext) (step.CheckStatus, error) {
	if a.creates != "" && a.fs.Exists(a.creates) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Phase returns the lifecycle phase the most recent Apply finished in.
func (a *Action) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastPhase
}

// Apply walks the lifecycle: authenticate, download, verify, execute,
// clean up.
func (a *Action) Apply(ctx step.RunContext) error {
	lc, err := newLifecycle()
	if err != nil {
		return fmt.Errorf("script %s: lifecycle: %w", a.name, err)
	}
	defer lc.stop()

	err = a.run(ctx.Context(), lc)
	if err != nil {
		lc.fail()
	}

	a.mu.Lock()
	a.lastPhase = lc.phase()
	a.mu.Unlock()

	return err
}

// run executes the phases in order. The temp file is created in the
// downloading phase and its removal is deferred immediately, so the
// scoped-cleanup guarantee holds no matter where run exits.
func (a *Action) run(ctx context.Context, lc *lifecycle) error {
	lc.advance(eventAuthenticate)
	if a.cred.IsZero() {
		return &AuthError{URL: a.url}
	}

	lc.advance(eventDownload)
	body, err := a.fetcher.Fetch(ctx, a.url, a.cred.Value())
	if err != nil {
		return &NetworkError{URL: a.url, Err: err}
	}

	tmp, err := os.CreateTemp("", "hostprep-script-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	_, writeErr := tmp.Write(body)
	closeErr := tmp.Close()
	if writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	lc.advance(eventVerify)
	if err := a.verify(body); err != nil {
		return err
	}

	if err := os.Chmod(tmpPath, 0700); err != nil {
		return fmt.Errorf("mark script executable: %w", err)
	}

	lc.advance(eventExecute)
	execCtx := ctx
	cancel := context.CancelFunc(func() {})
	if a.timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, a.timeout)
	}
	defer cancel()

	code, err := a.exec.ExecScript(execCtx, tmpPath)
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: a.url, Timeout: a.timeout}
	}
	if err != nil {
		return fmt.Errorf("execute script: %w", err)
	}
	if code != 0 {
		return &ExecutionError{URL: a.url, ExitCode: code}
	}

	lc.advance(eventCleanup)
	return nil
}

// verify rejects empty payloads and, when a checksum was provided
// out-of-band, payloads that do not match it.
func (a *Action) verify(body []byte) error {
	if len(body) == 0 {
		return &IntegrityError{URL: a.url, Reason: "empty payload"}
	}

	if a.checksum != "" {
		sum := sha256.Sum256(body)
		actual := hex.EncodeToString(sum[:])
		if actual != a.checksum {
			return &IntegrityError{
				URL:    a.url,
				Reason: fmt.Sprintf("checksum mismatch: expected %s, got %s", a.checksum, actual),
			}
		}
	}

	return nil
}

// Explain provides a human-readable explanation.
func (a *Action) Explain() step.Explanation {
	return step.NewExplanation(
		"Run remote installer script",
		fmt.Sprintf("Downloads %s with the stored credential, verifies the payload, and executes it on this host.", a.url),
	)
}

// Ensure Action implements step.Step.
var _ step.Step = (*Action)(nil)
