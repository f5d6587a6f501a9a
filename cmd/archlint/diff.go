package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archlint/internal/snapshot"
)

var (
	diffFormat  string
	diffDetails bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <before> [after]",
	Short: "Diff two stored snapshots",
	Long: `Compute the structural difference between two snapshots, identified
by ref or content hash. When after is omitted it defaults to "latest".

Examples:
  archlint diff baseline
  archlint diff baseline latest
  archlint diff a1b2c3d4 e5f6a7b8 --details
  archlint diff baseline --format=json`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "human", "Output format (json, human)")
	diffCmd.Flags().BoolVar(&diffDetails, "details", false, "Include per-entity change keys")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) {
	logger := newLogger(diffFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)
	store := storeFor(engineConfig(ws, repoRoot))

	beforeRef := args[0]
	afterRef := "latest"
	if len(args) == 2 {
		afterRef = args[1]
	}

	before, err := store.Load(beforeRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", beforeRef, err)
		os.Exit(1)
	}
	after, err := store.Load(afterRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", afterRef, err)
		os.Exit(1)
	}

	diff := snapshot.NewDiffEngine().Diff(before, after, diffDetails)

	resp := &DiffResponseCLI{Before: beforeRef, After: afterRef, Diff: diff}
	output, err := FormatResponse(resp, OutputFormat(diffFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
