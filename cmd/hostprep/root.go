package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/adapters/logging"
	"github.com/felixgeelhaar/hostprep/internal/ports"
)

var (
	// Global flags
	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "hostprep",
	Short: "An idempotent host provisioning runner",
	Long: `Hostprep converges a Linux host toward a declared state.

It reads a registry file describing packages, disk volumes, sshd
directives, and remote scripts, plans the minimal set of changes,
and applies them in dependency order. Steps that are already
satisfied are skipped, so repeated runs are safe.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		var stepErr *stepFailureError
		if errors.As(err, &stepErr) {
			return stepErr.code
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON lines")

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger configured by the global flags.
func newLogger() ports.Logger {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(os.Stderr),
		logging.WithLevel(level),
		logging.WithJSONFormat(logJSON),
	)
}

// stepFailureError carries a non-zero exit code for runs where one or
// more steps failed. Code 2 means failures only; code 3 means failures
// that also blocked dependent steps.
type stepFailureError struct {
	code    int
	failed  int
	blocked int
}

func (e *stepFailureError) Error() string {
	if e.blocked > 0 {
		return fmt.Sprintf("partial success: %d step(s) failed, %d dependent(s) skipped", e.failed, e.blocked)
	}
	return fmt.Sprintf("%d step(s) failed", e.failed)
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", err.Error())
}
