package engine

import (
	"path/filepath"

	"archlint/internal/config"
)

// Config drives one engine run. It is assembled by the CLI from the
// workspace config plus command-line flags.
type Config struct {
	RepoRoot string

	// ModelFile is the architecture model document; empty disables
	// enrichment.
	ModelFile string

	// RulesFiles are the rule documents to evaluate.
	RulesFiles []string

	// Baseline is a snapshot ref or hash to compare against; empty
	// disables baseline comparison.
	Baseline string

	// Analyzer scope.
	IncludePaths     []string
	ExcludeGlobs     []string
	Deterministic    bool
	MaxFileSizeBytes int64

	// Graph hard limits; zero means unlimited.
	MaxNodes int
	MaxEdges int

	// SaveSnapshot writes the scan result into the snapshot store under
	// "latest" and, when set, SaveRef.
	SaveSnapshot bool
	SaveRef      string
	SnapshotDir  string

	// HistoryPath is the run-history database; empty disables history.
	HistoryPath string
}

// FromWorkspace maps a loaded workspace config onto an engine config.
// Relative paths are resolved against the repo root.
func FromWorkspace(ws *config.Config, repoRoot string) Config {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(repoRoot, p)
	}

	rulesFiles := make([]string, 0, len(ws.Rules.Paths))
	for _, p := range ws.Rules.Paths {
		rulesFiles = append(rulesFiles, resolve(p))
	}

	cfg := Config{
		RepoRoot:         repoRoot,
		ModelFile:        resolve(ws.Model.Path),
		RulesFiles:       rulesFiles,
		IncludePaths:     ws.Analysis.IncludePaths,
		ExcludeGlobs:     ws.Analysis.ExcludeGlobs,
		Deterministic:    ws.Analysis.Deterministic,
		MaxFileSizeBytes: ws.Analysis.MaxFileSizeBytes,
		MaxNodes:         ws.Limits.MaxNodes,
		MaxEdges:         ws.Limits.MaxEdges,
		SaveSnapshot:     ws.Snapshots.AutoSave,
		SnapshotDir:      resolve(ws.Snapshots.Dir),
	}
	if ws.History.Enabled {
		cfg.HistoryPath = resolve(ws.History.Path)
	}
	return cfg
}
