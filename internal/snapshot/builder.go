package snapshot

import (
	"sort"
	"time"

	"archlint/internal/ir"
	"archlint/internal/report"
)

// Builder assembles a persisted Snapshot from an enriched graph.
//
// Nodes and edges are re-sorted into canonical order here so the
// snapshot serialization, and therefore its content hash, does not
// depend on how the caller ordered the graph.
type Builder struct {
	schemaVersion int
}

// NewBuilder creates a Builder
func NewBuilder() *Builder {
	return &Builder{schemaVersion: SchemaVersion}
}

// Build creates a snapshot from a graph and its violations. A zero
// CreatedAt in meta is filled with the current UTC time.
func (b *Builder) Build(g ir.ArchitectureIR, meta Meta, violations []report.Violation) Snapshot {
	nodes := append([]ir.IRNode{}, g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		return ir.NodeKey(nodes[i]) < ir.NodeKey(nodes[j])
	})

	edges := append([]ir.IREdge{}, g.Edges...)
	opts := ir.EdgeKeyOptions{IncludeLocation: true, IncludeDetails: true}
	sort.SliceStable(edges, func(i, j int) bool {
		return ir.EdgeKey(edges[i], opts) < ir.EdgeKey(edges[j], opts)
	})

	if meta.CreatedAt == "" {
		meta.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if violations == nil {
		violations = []report.Violation{}
	}

	return Snapshot{
		SchemaVersion: b.schemaVersion,
		Meta:          meta,
		Nodes:         nodes,
		Edges:         edges,
		Violations:    violations,
	}
}
