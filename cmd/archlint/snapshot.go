package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	snapshotSaveRefs   []string
	snapshotSaveFormat string
	snapshotListFormat string
	snapshotShowFormat string
	snapshotShowFull   bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored architecture snapshots",
	Long: `Snapshots are immutable, content-addressed captures of the enriched
dependency graph and its violations. Saving an unchanged repository
reproduces the same snapshot hash.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Scan the repository and save the result as a snapshot",
	Long: `Run a full scan and persist the enriched graph plus violations into
the snapshot store. The "latest" ref always moves to the new snapshot;
additional refs can be set with --ref.

Examples:
  archlint snapshot save
  archlint snapshot save --ref=baseline
  archlint snapshot save --ref=release-1.4 --ref=baseline`,
	Args: cobra.NoArgs,
	Run:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots and refs",
	Args:  cobra.NoArgs,
	Run:   runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <ref|hash>",
	Short: "Show a stored snapshot",
	Long: `Resolve a ref or content hash and print the snapshot. The default
output is a summary; use --full to emit the complete snapshot.

Examples:
  archlint snapshot show latest
  archlint snapshot show baseline --format=json
  archlint snapshot show a1b2c3d4 --full`,
	Args: cobra.ExactArgs(1),
	Run:  runSnapshotShow,
}

func init() {
	snapshotSaveCmd.Flags().StringSliceVar(&snapshotSaveRefs, "ref", nil, "Ref name to point at the saved snapshot (repeatable)")
	snapshotSaveCmd.Flags().StringVar(&snapshotSaveFormat, "format", "human", "Output format (json, human)")
	snapshotListCmd.Flags().StringVar(&snapshotListFormat, "format", "human", "Output format (json, human)")
	snapshotShowCmd.Flags().StringVar(&snapshotShowFormat, "format", "human", "Output format (json, human)")
	snapshotShowCmd.Flags().BoolVar(&snapshotShowFull, "full", false, "Print the full snapshot, not just the summary")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotSave(cmd *cobra.Command, args []string) {
	logger := newLogger(snapshotSaveFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)

	cfg := engineConfig(ws, repoRoot)
	cfg.SaveSnapshot = true
	if len(snapshotSaveRefs) > 0 {
		cfg.SaveRef = snapshotSaveRefs[0]
	}

	eng := newEngine(logger)
	result, err := eng.Scan(newContext(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if result.Saved == nil {
		fmt.Fprintln(os.Stderr, "Error: snapshot was not saved")
		os.Exit(1)
	}

	// Extra refs beyond the first are set directly on the store.
	store := storeFor(cfg)
	refs := result.Saved.RefsUpdated
	if len(snapshotSaveRefs) > 1 {
		for _, ref := range snapshotSaveRefs[1:] {
			if err := store.UpdateRef(ref, result.Saved.ShortHash); err != nil {
				fmt.Fprintf(os.Stderr, "Error updating ref %s: %v\n", ref, err)
				os.Exit(1)
			}
			refs = append(refs, ref)
		}
	}

	resp := &ScanResponseCLI{
		Report: result.Report,
		Saved:  &SavedCLI{Hash: result.Saved.ShortHash, Refs: refs},
	}
	output, err := FormatResponse(resp, OutputFormat(snapshotSaveFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runSnapshotList(cmd *cobra.Command, args []string) {
	logger := newLogger(snapshotListFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)
	store := storeFor(engineConfig(ws, repoRoot))

	resp := &SnapshotListCLI{
		Snapshots: []SnapshotInfoCLI{},
		Refs:      store.ListRefs(),
	}
	for _, stored := range store.ListObjects() {
		resp.Snapshots = append(resp.Snapshots, SnapshotInfoCLI{
			Hash:       stored.ShortHash,
			CreatedAt:  stored.Snapshot.Meta.CreatedAt,
			Commit:     stored.Snapshot.Meta.Commit,
			Branch:     stored.Snapshot.Meta.Branch,
			Nodes:      len(stored.Snapshot.Nodes),
			Edges:      len(stored.Snapshot.Edges),
			Violations: len(stored.Snapshot.Violations),
		})
	}

	output, err := FormatResponse(resp, OutputFormat(snapshotListFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runSnapshotShow(cmd *cobra.Command, args []string) {
	logger := newLogger(snapshotShowFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)
	store := storeFor(engineConfig(ws, repoRoot))

	refOrHash := args[0]
	snap, err := store.Load(refOrHash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resp := &SnapshotShowCLI{Hash: store.ResolveRef(refOrHash), Snapshot: snap}
	if resp.Hash == "" {
		resp.Hash = refOrHash
	} else {
		resp.Ref = refOrHash
	}

	format := OutputFormat(snapshotShowFormat)
	if snapshotShowFull {
		format = FormatJSON
	}
	output, err := FormatResponse(resp, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
