package main

import (
	"github.com/spf13/cobra"

	"archlint/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "archlint",
	Short: "archlint - architecture-as-code linter",
	Long: `archlint builds a language-agnostic dependency graph of a repository,
overlays a declarative architecture model onto it, and evaluates versioned
rules against the result. Snapshots of the enriched graph are stored
content-addressed so runs can be diffed and baselined over time.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("archlint version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, error")
}
