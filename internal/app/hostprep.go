// Package app provides the main application logic for hostprep.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/hostprep/internal/adapters/command"
	"github.com/felixgeelhaar/hostprep/internal/adapters/filesystem"
	"github.com/felixgeelhaar/hostprep/internal/adapters/httpfetch"
	"github.com/felixgeelhaar/hostprep/internal/adapters/logging"
	"github.com/felixgeelhaar/hostprep/internal/adapters/principal"
	"github.com/felixgeelhaar/hostprep/internal/adapters/prompt"
	"github.com/felixgeelhaar/hostprep/internal/domain/credential"
	"github.com/felixgeelhaar/hostprep/internal/domain/execution"
	"github.com/felixgeelhaar/hostprep/internal/domain/manifest"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/provider"
	"github.com/felixgeelhaar/hostprep/internal/provider/disk"
	"github.com/felixgeelhaar/hostprep/internal/provider/pkg"
	"github.com/felixgeelhaar/hostprep/internal/provider/remotescript"
	"github.com/felixgeelhaar/hostprep/internal/provider/sshd"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Hostprep is the main application orchestrator.
type Hostprep struct {
	fs        ports.FileSystem
	runner    ports.CommandRunner
	executor  ports.ScriptExecutor
	fetcher   ports.ScriptFetcher
	prompter  ports.Prompter
	principal ports.Principal
	logger    ports.Logger

	loader  *manifest.Loader
	planner *execution.Planner

	out      io.Writer
	dryRun   bool
	yesToAll bool
	timeout  time.Duration
}

// New creates a new Hostprep application wired with real adapters.
func New(out io.Writer) *Hostprep {
	fs := filesystem.NewRealFileSystem()
	return &Hostprep{
		fs:        fs,
		runner:    command.NewRealRunner(),
		executor:  command.NewRealExecutor(),
		fetcher:   httpfetch.NewClient(),
		prompter:  prompt.NewHuhPrompter(),
		principal: principal.NewUnixPrincipal(),
		logger:    logging.NewNopLogger(),
		loader:    manifest.NewLoader(fs),
		planner:   execution.NewPlanner(),
		out:       out,
	}
}

// WithYesToAll skips all confirmation prompts.
func (h *Hostprep) WithYesToAll(yes bool) *Hostprep {
	h.yesToAll = yes
	return h
}

// WithDryRun previews apply actions without executing them.
func (h *Hostprep) WithDryRun(dryRun bool) *Hostprep {
	h.dryRun = dryRun
	return h
}

// WithTimeout overrides the per-script execution timeout.
func (h *Hostprep) WithTimeout(d time.Duration) *Hostprep {
	h.timeout = d
	return h
}

// WithLogger sets the structured logger.
func (h *Hostprep) WithLogger(logger ports.Logger) *Hostprep {
	h.logger = logger
	return h
}

// WithFileSystem replaces the filesystem adapter.
func (h *Hostprep) WithFileSystem(fs ports.FileSystem) *Hostprep {
	h.fs = fs
	h.loader = manifest.NewLoader(fs)
	return h
}

// WithCommandRunner replaces the command runner adapter.
func (h *Hostprep) WithCommandRunner(runner ports.CommandRunner) *Hostprep {
	h.runner = runner
	return h
}

// WithScriptExecutor replaces the script executor adapter.
func (h *Hostprep) WithScriptExecutor(exec ports.ScriptExecutor) *Hostprep {
	h.executor = exec
	return h
}

// WithFetcher replaces the script fetcher adapter.
func (h *Hostprep) WithFetcher(fetcher ports.ScriptFetcher) *Hostprep {
	h.fetcher = fetcher
	return h
}

// WithPrompter replaces the prompter adapter.
func (h *Hostprep) WithPrompter(p ports.Prompter) *Hostprep {
	h.prompter = p
	return h
}

// WithPrincipal replaces the principal adapter.
func (h *Hostprep) WithPrincipal(p ports.Principal) *Hostprep {
	h.principal = p
	return h
}

// Plan loads the registry file and previews what a run would change.
// No step is applied. The stored credential is read when present but the
// operator is never prompted for one during planning.
func (h *Hostprep) Plan(ctx context.Context, registryPath string) (*execution.Plan, error) {
	m, err := h.loader.Load(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry file: %w", err)
	}

	cred := credential.Credential{}
	if len(m.Scripts) > 0 {
		store := credential.NewStore(m.CredentialPath(), h.fs, h.prompter)
		if store.Exists() {
			cred, err = store.Get(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	registry, err := h.buildRegistry(m, cred)
	if err != nil {
		return nil, err
	}

	return h.planner.Plan(ctx, registry)
}

// Run provisions the host from the registry file: pre-flight privilege
// check, credential load, compile, plan, confirm, execute.
func (h *Hostprep) Run(ctx context.Context, registryPath string) (execution.Report, error) {
	if !h.principal.Privileged() {
		return execution.Report{}, &PrincipalError{Name: h.principal.Name()}
	}

	m, err := h.loader.Load(registryPath)
	if err != nil {
		return execution.Report{}, fmt.Errorf("failed to load registry file: %w", err)
	}

	cred := credential.Credential{}
	if len(m.Scripts) > 0 {
		store := credential.NewStore(m.CredentialPath(), h.fs, h.prompter)
		cred, err = store.Get(ctx)
		if err != nil {
			return execution.Report{}, err
		}
	}

	registry, err := h.buildRegistry(m, cred)
	if err != nil {
		return execution.Report{}, err
	}

	plan, err := h.planner.Plan(ctx, registry)
	if err != nil {
		return execution.Report{}, err
	}

	h.PrintPlan(plan)

	if plan.HasChanges() && !h.dryRun && !h.yesToAll {
		ok, err := h.prompter.Confirm(ctx,
			fmt.Sprintf("Apply %d change(s)?", plan.Summary().NeedsApply), false)
		if err != nil {
			return execution.Report{}, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return execution.Report{}, ErrAborted
		}
	}

	h.logger.Info(ctx, "starting run",
		ports.F("registry", registryPath),
		ports.F("steps", plan.Len()),
		ports.F("dry_run", h.dryRun))

	runner := execution.NewRunner().WithDryRun(h.dryRun)
	report := runner.Run(ctx, plan)

	h.logger.Info(ctx, "run finished",
		ports.F("run_id", report.RunID()),
		ports.F("succeeded", report.SucceededCount()),
		ports.F("failed", report.FailedCount()),
		ports.F("blocked", report.BlockedCount()))

	h.PrintReport(report)
	if report.Interrupted() {
		return report, fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	return report, nil
}

// buildRegistry compiles the manifest into a validated, ordered step registry.
func (h *Hostprep) buildRegistry(m *manifest.Manifest, cred credential.Credential) (*step.Registry, error) {
	compileCtx := provider.NewCompileContext(m).WithCredential(cred)
	if h.timeout > 0 {
		compileCtx = compileCtx.WithScriptTimeout(h.timeout)
	}

	providers := []provider.Provider{
		pkg.NewProvider(h.runner),
		disk.NewProvider(h.runner),
		sshd.NewProvider(h.fs, h.runner),
		remotescript.NewProvider(h.fetcher, h.executor, h.fs),
	}

	registry := step.NewRegistry()
	if err := provider.Build(registry, providers, compileCtx); err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	return registry, nil
}

// PrintPlan outputs a human-readable plan summary.
func (h *Hostprep) PrintPlan(plan *execution.Plan) {
	h.printf("\n%s\n\n", headerStyle.Render("Hostprep Plan"))

	if !plan.HasChanges() {
		h.printf("No changes needed. The host is already provisioned.\n")
		return
	}

	summary := plan.Summary()
	h.printf("Steps: %d total, %d to apply, %d satisfied\n\n",
		summary.Total, summary.NeedsApply, summary.Satisfied)

	for _, entry := range plan.Entries() {
		marker := okStyle.Render("✓")
		if entry.Status().NeedsAction() {
			marker = pendingStyle.Render("+")
		}
		h.printf("  %s %s\n", marker, entry.Step().ID().String())
		h.printf("      %s\n", entry.Step().Explain().Summary())
	}
}

// PrintReport outputs per-step outcomes and a final summary.
func (h *Hostprep) PrintReport(report execution.Report) {
	h.printf("\n%s\n\n", headerStyle.Render("Run Report"))

	for _, result := range report.Results() {
		switch {
		case result.Succeeded():
			h.printf("  %s %s (%s)\n", okStyle.Render("✓"), result.StepID(), result.Duration().Round(time.Millisecond))
		case result.Blocked():
			h.printf("  %s %s (skipped: dependency failed)\n", failStyle.Render("-"), result.StepID())
		case result.Skipped():
			h.printf("  %s %s (skipped: %s)\n", skipStyle.Render("-"), result.StepID(), result.SkipReason())
		case result.Failed() && result.BestEffort():
			h.printf("  %s %s: %v (best effort, run continues)\n", pendingStyle.Render("!"), result.StepID(), result.Error())
		case result.Failed():
			h.printf("  %s %s: %v\n", failStyle.Render("✗"), result.StepID(), result.Error())
		}
	}

	h.printf("\nSummary: %d succeeded, %d failed, %d skipped (%d blocked by failures)\n",
		report.SucceededCount(), report.FailedCount(), report.SkippedCount(), report.BlockedCount())
	h.printf("Run ID: %s\n", report.RunID())
}

// printf writes to the output writer, ignoring errors.
func (h *Hostprep) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(h.out, format, args...)
}
