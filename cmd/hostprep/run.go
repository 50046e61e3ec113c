package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/adapters/prompt"
	"github.com/felixgeelhaar/hostprep/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Converge the host toward the declared state",
	Long: `Run loads the registry file, plans the minimal set of changes,
and applies them in dependency order.

Steps already satisfied are skipped. When a step fails, its
dependents are skipped but unrelated steps still run. Use
--dry-run to preview without changing anything.`,
	RunE: runRun,
}

var (
	runRegistryPath string
	runYesToAll     bool
	runTimeoutSecs  int
	runDryRun       bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runRegistryPath, "registry", "r", "hostprep.yaml", "Path to the registry file")
	runCmd.Flags().BoolVarP(&runYesToAll, "yes-to-all", "y", false, "Skip all confirmation prompts")
	runCmd.Flags().IntVar(&runTimeoutSecs, "timeout", 0, "Per-script timeout in seconds (0 uses the registry default)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Preview changes without applying them")
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	hostprep := app.New(os.Stdout).
		WithLogger(newLogger()).
		WithYesToAll(runYesToAll).
		WithDryRun(runDryRun)
	if runYesToAll {
		// Non-interactive mode must never open a form; a missing
		// credential fails with a pointer to 'hostprep secret set'.
		hostprep = hostprep.WithPrompter(prompt.NewYesPrompter())
	}
	if runTimeoutSecs > 0 {
		hostprep = hostprep.WithTimeout(time.Duration(runTimeoutSecs) * time.Second)
	}

	report, err := hostprep.Run(ctx, runRegistryPath)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if report.Success() {
		return nil
	}
	code := 2
	if report.BlockedCount() > 0 {
		code = 3
	}
	return &stepFailureError{
		code:    code,
		failed:  report.FailedCount(),
		blocked: report.BlockedCount(),
	}
}
