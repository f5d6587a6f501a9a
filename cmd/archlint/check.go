package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	checkFormat     string
	checkBaseline   string
	checkNoBaseline bool
	checkSave       bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Gate a build on architecture violations",
	Long: `Run a scan and exit non-zero when it produced blocking findings:
error-severity violations or engine errors. Warnings never fail the check.

By default check compares against the configured baseline ref when one
exists, so the report classifies each finding as new, existing, or fixed.

Examples:
  archlint check
  archlint check --format=json
  archlint check --baseline=release-1.4
  archlint check --no-baseline`,
	Args: cobra.NoArgs,
	Run:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "human", "Output format (json, human)")
	checkCmd.Flags().StringVar(&checkBaseline, "baseline", "", "Snapshot ref or hash to compare against")
	checkCmd.Flags().BoolVar(&checkNoBaseline, "no-baseline", false, "Skip baseline comparison entirely")
	checkCmd.Flags().BoolVar(&checkSave, "save", false, "Also save a snapshot of this check")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	logger := newLogger(checkFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)

	cfg := engineConfig(ws, repoRoot)
	cfg.SaveSnapshot = checkSave

	switch {
	case checkNoBaseline:
		cfg.Baseline = ""
	case checkBaseline != "":
		cfg.Baseline = checkBaseline
	default:
		// Configured baseline ref is opt-in: compare only once it exists.
		if ref := ws.Snapshots.BaselineRef; ref != "" && storeFor(cfg).Exists(ref) {
			cfg.Baseline = ref
		}
	}

	eng := newEngine(logger)
	result, err := eng.Scan(newContext(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resp := &ScanResponseCLI{Report: result.Report}
	if result.Saved != nil {
		resp.Saved = &SavedCLI{
			Hash: result.Saved.ShortHash,
			Refs: result.Saved.RefsUpdated,
		}
	}

	output, err := FormatResponse(resp, OutputFormat(checkFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	if result.Report.HasBlockingFindings() {
		os.Exit(1)
	}
}
