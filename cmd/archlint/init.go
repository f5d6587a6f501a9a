package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"archlint/internal/config"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize archlint configuration",
	Long:  "Creates a .archlint/ directory with a default config, a starter architecture model, and a starter rules file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .archlint directory)")
	rootCmd.AddCommand(initCmd)
}

const starterModel = `version: 1
contexts:
  core:
    name: Core
containers:
  app:
    name: Application
    context: core
    code:
      roots: ["."]
      layers:
        api: ["app/api/**"]
        domain: ["app/domain/**"]
`

const starterRules = `version: 1
rules:
  - id: no-upward-deps
    name: Layers only depend downward
    description: Example rule. Adjust containers and predicates to your model.
    severity: warning
    action: forbid
    target: dependency
    when:
      all:
        - "from.layer == domain"
        - "to.layer == api"
`

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve repository root: %w", err)
	}

	archDir := filepath.Join(repoRoot, ".archlint")
	if _, statErr := os.Stat(archDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("archlint already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(archDir, "config.yaml"))
			fmt.Println("\nRun 'archlint init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(archDir); removeErr != nil {
			return fmt.Errorf("failed to remove existing .archlint directory: %w", removeErr)
		}
	}

	if mkdirErr := os.MkdirAll(archDir, 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create .archlint directory: %w", mkdirErr)
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = "."
	if saveErr := cfg.Save(repoRoot); saveErr != nil {
		return fmt.Errorf("failed to write config file: %w", saveErr)
	}

	modelPath := filepath.Join(archDir, "model.yaml")
	if writeErr := os.WriteFile(modelPath, []byte(starterModel), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write model file: %w", writeErr)
	}
	rulesPath := filepath.Join(archDir, "rules.yaml")
	if writeErr := os.WriteFile(rulesPath, []byte(starterRules), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write rules file: %w", writeErr)
	}

	fmt.Println("archlint initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(archDir, "config.yaml"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Describe your architecture in .archlint/model.yaml")
	fmt.Println("  2. Write rules in .archlint/rules.yaml")
	fmt.Println("  3. Run 'archlint scan' to analyze the repository")

	return nil
}
