package analyzer

import (
	"context"
	"path/filepath"

	"archlint/internal/ir"
)

// DefaultMaxFileSizeBytes is the per-file size cap applied when a config
// does not set one. Files above the cap are skipped, not failed.
const DefaultMaxFileSizeBytes int64 = 2_000_000

// Target restricts analysis scope, e.g. for changed-only runs.
type Target struct {
	// IncludePaths limits scanning to these paths (relative to the repo
	// root or absolute within it). Empty means the whole repository.
	IncludePaths []string

	// ExcludeGlobs are extra repo-relative glob patterns to skip, merged
	// with each analyzer's own defaults.
	ExcludeGlobs []string
}

// IsEmpty reports whether the target imposes no restriction
func (t Target) IsEmpty() bool {
	return len(t.IncludePaths) == 0 && len(t.ExcludeGlobs) == 0
}

// Config is the contract between the engine and analyzers. Analyzers must
// not mutate it.
type Config struct {
	RepoRoot string
	Target   Target

	// Deterministic requires stable node/edge ordering across runs.
	Deterministic bool

	// MaxFileSizeBytes caps individual source files; zero or negative
	// means DefaultMaxFileSizeBytes.
	MaxFileSizeBytes int64

	// LanguageOptions carries per-analyzer options keyed by language,
	// e.g. LanguageOptions["python"]["follow_namespace_packages"].
	LanguageOptions map[string]map[string]any

	// RepoMetadata is optional provenance (commit, branch, CI run id)
	// that analyzers may copy into graph metadata.
	RepoMetadata map[string]any

	// CacheDir, when set, is a directory analyzers may use for their own
	// caches.
	CacheDir string
}

// NormalizedRepoRoot resolves the repo root to an absolute path
func (c Config) NormalizedRepoRoot() (string, error) {
	return filepath.Abs(c.RepoRoot)
}

// FileSizeLimit returns the effective per-file size cap
func (c Config) FileSizeLimit() int64 {
	if c.MaxFileSizeBytes > 0 {
		return c.MaxFileSizeBytes
	}
	return DefaultMaxFileSizeBytes
}

// Analyzer extracts language-specific facts from a repository and emits a
// language-agnostic dependency graph.
type Analyzer interface {
	// Language is the primary language this analyzer covers.
	Language() ir.Language

	// PluginID is a stable identifier used in produced_by and reporting.
	PluginID() string

	// CanAnalyze is a fast detection check (marker files, extensions).
	// It must not parse deeply.
	CanAnalyze(repoRoot string) bool

	// Analyze scans the repository and returns a graph. With
	// Config.Deterministic set, output must be byte-stable across runs.
	Analyze(ctx context.Context, cfg Config) (ir.ArchitectureIR, error)
}
