package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/app"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what changes a run would make",
	Long: `Plan loads the registry file, checks the current host state,
and shows which steps would be applied. No changes are made.`,
	RunE: runPlan,
}

var planRegistryPath string

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planRegistryPath, "registry", "r", "hostprep.yaml", "Path to the registry file")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	hostprep := app.New(os.Stdout).WithLogger(newLogger())

	plan, err := hostprep.Plan(ctx, planRegistryPath)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	hostprep.PrintPlan(plan)
	if plan.HasChanges() {
		fmt.Println("\nRun 'hostprep run' to apply these changes.")
	}
	return nil
}
