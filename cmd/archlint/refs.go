package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archlint/internal/snapshot"
)

var (
	refsListFormat string
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Manage snapshot refs",
	Long: `Refs are mutable names pointing at immutable snapshot objects,
like git branches. The engine moves "latest" on every saved scan; the
configured baseline ref is what check compares against.`,
}

var refsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List refs and the snapshots they point at",
	Args:  cobra.NoArgs,
	Run:   runRefsList,
}

var refsSetCmd = &cobra.Command{
	Use:   "set <name> <ref|hash>",
	Short: "Point a ref at a snapshot",
	Long: `Point a ref at an existing snapshot, identified by another ref or
by content hash.

Examples:
  archlint refs set baseline latest
  archlint refs set release-1.4 a1b2c3d4`,
	Args: cobra.ExactArgs(2),
	Run:  runRefsSet,
}

var refsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a ref (the snapshot object is kept)",
	Args:  cobra.ExactArgs(1),
	Run:   runRefsDelete,
}

func init() {
	refsListCmd.Flags().StringVar(&refsListFormat, "format", "human", "Output format (json, human)")

	refsCmd.AddCommand(refsListCmd)
	refsCmd.AddCommand(refsSetCmd)
	refsCmd.AddCommand(refsDeleteCmd)
	rootCmd.AddCommand(refsCmd)
}

func runRefsList(cmd *cobra.Command, args []string) {
	logger := newLogger(refsListFormat)
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)
	store := storeFor(engineConfig(ws, repoRoot))

	resp := &RefsResponseCLI{Refs: store.ListRefs()}
	output, err := FormatResponse(resp, OutputFormat(refsListFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runRefsSet(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)
	store := storeFor(engineConfig(ws, repoRoot))

	name, target := args[0], args[1]

	hash := store.ResolveRef(target)
	if hash == "" && len(target) >= snapshot.HashPrefixLength {
		hash = target[:snapshot.HashPrefixLength]
	}
	if hash == "" || !store.ObjectExists(hash) {
		fmt.Fprintf(os.Stderr, "Error: no snapshot for %q\n", target)
		os.Exit(1)
	}
	if err := store.UpdateRef(name, hash); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating ref: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s -> %s\n", name, hash)
}

func runRefsDelete(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	repoRoot := mustGetRepoRoot()
	ws := loadWorkspace(repoRoot, logger)
	store := storeFor(engineConfig(ws, repoRoot))

	name := args[0]
	if !store.DeleteRef(name) {
		fmt.Fprintf(os.Stderr, "Error: ref %q not found\n", name)
		os.Exit(1)
	}

	fmt.Printf("Deleted ref %s\n", name)
}
