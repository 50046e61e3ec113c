package script

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/credential"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/testutil/mocks"
)

const scriptURL = "https://provision.example.com/bootstrap.sh"

var scriptBody = []byte("#!/bin/sh\necho bootstrap\n")

func checksumOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// tempScriptCount counts leftover downloaded script files. Every Apply
// must leave this unchanged.
func tempScriptCount(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "hostprep-script-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return len(matches)
}

type actionFixture struct {
	fetcher *mocks.Fetcher
	exec    *mocks.Executor
	fs      *mocks.FileSystem
	cred    credential.Credential
	cfg     Config
}

func newActionFixture() *actionFixture {
	fetcher := mocks.NewFetcher()
	fetcher.AddBody(scriptURL, scriptBody)
	return &actionFixture{
		fetcher: fetcher,
		exec:    &mocks.Executor{},
		fs:      mocks.NewFileSystem(),
		cred:    credential.New("tok-12345"),
		cfg: Config{
			Name:     "bootstrap",
			URL:      scriptURL,
			Checksum: checksumOf(scriptBody),
		},
	}
}

func (f *actionFixture) action() *Action {
	return NewAction(f.cfg, f.cred, f.fetcher, f.exec, f.fs)
}

func runCtx() step.RunContext {
	return step.NewRunContext(context.Background())
}

func TestAction_Apply_Success(t *testing.T) {
	before := tempScriptCount(t)
	f := newActionFixture()
	action := f.action()

	if err := action.Apply(runCtx()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if action.Phase() != PhaseCleaned {
		t.Errorf("Phase() = %v, want PhaseCleaned", action.Phase())
	}
	if got := tempScriptCount(t); got != before {
		t.Errorf("temp script files leaked: %d before, %d after", before, got)
	}

	paths := f.exec.Paths()
	if len(paths) != 1 {
		t.Fatalf("executor invoked %d times, want 1", len(paths))
	}
	if _, err := os.Stat(paths[0]); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("script file %s still exists after Apply", paths[0])
	}

	calls := f.fetcher.Calls()
	if len(calls) != 1 || calls[0].Token != "tok-12345" {
		t.Errorf("fetch calls = %+v, want one call carrying the credential", calls)
	}
}

func TestAction_Apply_MissingCredential(t *testing.T) {
	f := newActionFixture()
	f.cred = credential.Credential{}
	action := f.action()

	err := action.Apply(runCtx())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Apply() error = %v, want AuthError", err)
	}
	if action.Phase() != PhaseFailed {
		t.Errorf("Phase() = %v, want PhaseFailed", action.Phase())
	}
	if len(f.fetcher.Calls()) != 0 {
		t.Error("no download should be attempted without a credential")
	}
}

func TestAction_Apply_FetchFailure(t *testing.T) {
	before := tempScriptCount(t)
	f := newActionFixture()
	f.fetcher.AddError(scriptURL, errors.New("404 not found"))
	action := f.action()

	err := action.Apply(runCtx())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Apply() error = %v, want NetworkError", err)
	}
	if action.Phase() != PhaseFailed {
		t.Errorf("Phase() = %v, want PhaseFailed", action.Phase())
	}
	if got := tempScriptCount(t); got != before {
		t.Errorf("temp script files leaked: %d before, %d after", before, got)
	}
	if len(f.exec.Paths()) != 0 {
		t.Error("nothing must execute after a failed download")
	}
}

func TestAction_Apply_EmptyPayload(t *testing.T) {
	before := tempScriptCount(t)
	f := newActionFixture()
	f.fetcher.AddBody(scriptURL, []byte{})
	f.cfg.Checksum = ""
	action := f.action()

	err := action.Apply(runCtx())

	var integrityErr *IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("Apply() error = %v, want IntegrityError", err)
	}
	if got := tempScriptCount(t); got != before {
		t.Errorf("temp script files leaked: %d before, %d after", before, got)
	}
}

func TestAction_Apply_ChecksumMismatch(t *testing.T) {
	before := tempScriptCount(t)
	f := newActionFixture()
	f.fetcher.AddBody(scriptURL, []byte("#!/bin/sh\necho tampered\n"))
	action := f.action()

	err := action.Apply(runCtx())

	var integrityErr *IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("Apply() error = %v, want IntegrityError", err)
	}
	if action.Phase() != PhaseFailed {
		t.Errorf("Phase() = %v, want PhaseFailed", action.Phase())
	}
	if got := tempScriptCount(t); got != before {
		t.Errorf("temp script files leaked: %d before, %d after", before, got)
	}
	if len(f.exec.Paths()) != 0 {
		t.Error("a tampered payload must never execute")
	}
}

func TestAction_Apply_NonZeroExit(t *testing.T) {
	before := tempScriptCount(t)
	f := newActionFixture()
	f.exec.ExitCode = 7
	action := f.action()

	err := action.Apply(runCtx())

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Apply() error = %v, want ExecutionError", err)
	}
	if execErr.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", execErr.ExitCode)
	}
	if got := tempScriptCount(t); got != before {
		t.Errorf("temp script files leaked: %d before, %d after", before, got)
	}
}

func TestAction_Apply_Timeout(t *testing.T) {
	before := tempScriptCount(t)
	f := newActionFixture()
	f.exec.BlockUntilCancel = true
	f.cfg.Timeout = 20 * time.Millisecond
	action := f.action()

	err := action.Apply(runCtx())

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Apply() error = %v, want TimeoutError", err)
	}
	if timeoutErr.Timeout != 20*time.Millisecond {
		t.Errorf("Timeout = %v, want 20ms", timeoutErr.Timeout)
	}
	if action.Phase() != PhaseFailed {
		t.Errorf("Phase() = %v, want PhaseFailed", action.Phase())
	}
	if got := tempScriptCount(t); got != before {
		t.Errorf("temp script files leaked: %d before, %d after", before, got)
	}
}

func TestAction_Apply_NoChecksumSkipsVerification(t *testing.T) {
	f := newActionFixture()
	f.cfg.Checksum = ""
	action := f.action()

	if err := action.Apply(runCtx()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if action.Phase() != PhaseCleaned {
		t.Errorf("Phase() = %v, want PhaseCleaned", action.Phase())
	}
}

func TestAction_Check_CreatesPath(t *testing.T) {
	f := newActionFixture()
	f.cfg.Creates = "/opt/agent/bin/agent"
	f.fs.AddFile("/opt/agent/bin/agent", []byte("binary"))
	action := f.action()

	status, err := action.Check(runCtx())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if status != step.StatusSatisfied {
		t.Errorf("Check() = %v, want StatusSatisfied (artifact present)", status)
	}
}

func TestAction_Check_NoArtifactAlwaysRuns(t *testing.T) {
	f := newActionFixture()
	action := f.action()

	status, err := action.Check(runCtx())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if status != step.StatusNeedsApply {
		t.Errorf("Check() = %v, want StatusNeedsApply", status)
	}
}

func TestAction_ID(t *testing.T) {
	f := newActionFixture()
	action := f.action()

	if action.ID().String() != "script:run:bootstrap" {
		t.Errorf("ID() = %q, want script:run:bootstrap", action.ID())
	}
	if action.ID().Provider() != "script" {
		t.Errorf("Provider() = %q, want script", action.ID().Provider())
	}
}
