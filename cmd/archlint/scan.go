package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	scanFormat   string
	scanModel    string
	scanRules    []string
	scanBaseline string
	scanSaveRef  string
	scanNoSave   bool
	scanInclude  []string
	scanExclude  []string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze the repository and report architecture violations",
	Long: `Build the dependency graph, enrich it with the architecture model,
evaluate the configured rules, and save a snapshot of the result.

Examples:
  archlint scan
  archlint scan --format=json
  archlint scan --baseline=baseline
  archlint scan --save-ref=baseline
  archlint scan --include=services --exclude='**/generated/**'`,
	Args: cobra.NoArgs,
	Run:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format (json, human)")
	scanCmd.Flags().StringVar(&scanModel, "model", "", "Architecture model file (overrides config)")
	scanCmd.Flags().StringSliceVar(&scanRules, "rules", nil, "Rule files (overrides config)")
	scanCmd.Flags().StringVar(&scanBaseline, "baseline", "", "Snapshot ref or hash to compare against")
	scanCmd.Flags().StringVar(&scanSaveRef, "save-ref", "", "Additional ref to point at the saved snapshot")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "Do not save a snapshot of this scan")
	scanCmd.Flags().StringSliceVar(&scanInclude, "include", nil, "Limit analysis to these paths")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "Additional exclude globs")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	logger := newLogger(scanFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)

	cfg := engineConfig(ws, repoRoot)
	if scanModel != "" {
		cfg.ModelFile = scanModel
	}
	if len(scanRules) > 0 {
		cfg.RulesFiles = scanRules
	}
	if len(scanInclude) > 0 {
		cfg.IncludePaths = scanInclude
	}
	if len(scanExclude) > 0 {
		cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, scanExclude...)
	}
	cfg.Baseline = scanBaseline
	cfg.SaveRef = scanSaveRef
	if scanNoSave {
		cfg.SaveSnapshot = false
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

	output, err := FormatResponse(resp, OutputFormat(scanFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
