package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"archlint/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scan runs",
	Long: `List scans recorded in the run-history database, newest first.

Examples:
  archlint history
  archlint history --limit=5
  archlint history --format=json`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 = all)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	logger := newLogger(historyFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)

	if !ws.History.Enabled {
		fmt.Fprintln(os.Stderr, "Error: run history is disabled in the workspace config")
		os.Exit(1)
	}
	dbPath := ws.History.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(repoRoot, dbPath)
	}

	db, err := storage.Open(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	resp := &HistoryResponseCLI{Runs: runs}
	output, err := FormatResponse(resp, OutputFormat(historyFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
