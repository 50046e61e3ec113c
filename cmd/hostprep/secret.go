package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/adapters/filesystem"
	"github.com/felixgeelhaar/hostprep/internal/adapters/prompt"
	"github.com/felixgeelhaar/hostprep/internal/domain/credential"
	"github.com/felixgeelhaar/hostprep/internal/domain/manifest"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the stored download credential",
	Long: `Secret manages the credential used to authenticate remote
script downloads. The credential is stored in a root-owned file
with mode 0600 and is never printed or logged.`,
}

var secretRegistryPath string

var secretSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Prompt for a new credential and store it",
	RunE:  runSecretSet,
}

var secretCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a credential is stored",
	RunE:  runSecretCheck,
}

var secretPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the credential file path",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(credentialPath())
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)

	secretCmd.PersistentFlags().StringVarP(&secretRegistryPath, "registry", "r", "hostprep.yaml", "Registry file to read the credential path from")

	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretCheckCmd)
	secretCmd.AddCommand(secretPathCmd)
}

// credentialPath resolves the credential file path from the registry
// file when readable, falling back to the default location.
func credentialPath() string {
	loader := manifest.NewLoader(filesystem.NewRealFileSystem())
	if m, err := loader.Load(secretRegistryPath); err == nil {
		return m.CredentialPath()
	}
	return manifest.DefaultCredentialPath
}

func runSecretSet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	prompter := prompt.NewHuhPrompter()
	value, err := prompter.Secret(ctx, "Enter credential")
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}

	store := credential.NewStore(credentialPath(), filesystem.NewRealFileSystem(), prompter)
	if err := store.Set(value); err != nil {
		return err
	}

	fmt.Printf("Credential stored at %s\n", store.Path())
	return nil
}

func runSecretCheck(_ *cobra.Command, _ []string) error {
	store := credential.NewStore(credentialPath(), filesystem.NewRealFileSystem(), prompt.NewHuhPrompter())
	if !store.Exists() {
		return fmt.Errorf("no credential stored at %s", store.Path())
	}
	fmt.Printf("Credential present at %s\n", store.Path())
	return nil
}
