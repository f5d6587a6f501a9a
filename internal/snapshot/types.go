// Package snapshot persists enriched graphs plus their violations as
// immutable, content-addressed objects with git-like mutable refs, and
// computes structural diffs between snapshots.
package snapshot

import (
	"archlint/internal/ir"
	"archlint/internal/report"
)

// SchemaVersion is the current snapshot schema version
const SchemaVersion = 1

// Meta describes when and how a snapshot was produced
type Meta struct {
	RepoRoot     string `json:"repo_root"`
	Commit       string `json:"commit,omitempty"`
	Branch       string `json:"branch,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	ToolVersion  string `json:"tool_version,omitempty"`
	ModelVersion int    `json:"model_version,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Snapshot is an immutable architecture snapshot: the enriched graph and
// the violations found against it, in canonical order for stable hashing
// and diffing.
type Snapshot struct {
	SchemaVersion int  `json:"schema_version"`
	Meta          Meta `json:"meta"`

	Nodes []ir.IRNode `json:"nodes"`
	Edges []ir.IREdge `json:"edges"`

	Violations []report.Violation `json:"violations"`
}

// Empty returns an empty snapshot rooted at repoRoot
func Empty(repoRoot string) Snapshot {
	return Snapshot{
		SchemaVersion: SchemaVersion,
		Meta:          Meta{RepoRoot: repoRoot},
		Nodes:         []ir.IRNode{},
		Edges:         []ir.IREdge{},
		Violations:    []report.Violation{},
	}
}

// Diff is the structural difference between two snapshots. It is factual
// and rule-agnostic.
type Diff struct {
	NodesAdded   int `json:"nodes_added"`
	NodesRemoved int `json:"nodes_removed"`
	EdgesAdded   int `json:"edges_added"`
	EdgesRemoved int `json:"edges_removed"`

	Details *DiffDetails `json:"details,omitempty"`
}

// DiffDetails is the id-level breakdown of a diff
type DiffDetails struct {
	Nodes DiffKeys `json:"nodes"`
	Edges DiffKeys `json:"edges"`
}

// DiffKeys lists entity keys by change class
type DiffKeys struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

// IsEmpty reports whether the diff contains no added or removed entities
func (d Diff) IsEmpty() bool {
	return d.NodesAdded == 0 && d.NodesRemoved == 0 && d.EdgesAdded == 0 && d.EdgesRemoved == 0
}

// BaselineCounts summarizes a baseline comparison
type BaselineCounts struct {
	New      int `json:"new"`
	Existing int `json:"existing"`
	Fixed    int `json:"fixed"`
	Unknown  int `json:"unknown"`
}
