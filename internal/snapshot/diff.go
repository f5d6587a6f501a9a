package snapshot

import (
	"encoding/json"
	"sort"

	"archlint/internal/ir"
)

// DiffEngine computes pure structural diffs between two snapshots.
// Each entity reduces to (identity key, content signature); the diff is
// a set comparison over keys with signature comparison on the overlap.
type DiffEngine struct{}

// NewDiffEngine creates a DiffEngine
func NewDiffEngine() *DiffEngine {
	return &DiffEngine{}
}

// Diff compares two snapshots. Neither input is mutated.
func (d *DiffEngine) Diff(before, after Snapshot, includeDetails bool) Diff {
	beforeNodes := nodeSignatures(before.Nodes)
	afterNodes := nodeSignatures(after.Nodes)
	beforeEdges := edgeSignatures(before.Edges)
	afterEdges := edgeSignatures(after.Edges)

	nodes := classify(beforeNodes, afterNodes)
	edges := classify(beforeEdges, afterEdges)

	out := Diff{
		NodesAdded:   len(nodes.Added),
		NodesRemoved: len(nodes.Removed),
		EdgesAdded:   len(edges.Added),
		EdgesRemoved: len(edges.Removed),
	}
	if includeDetails {
		out.Details = &DiffDetails{Nodes: nodes, Edges: edges}
	}
	return out
}

func nodeSignatures(nodes []ir.IRNode) map[string]string {
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		out[ir.NodeKey(n)] = signature(n)
	}
	return out
}

func edgeSignatures(edges []ir.IREdge) map[string]string {
	out := make(map[string]string, len(edges))
	for _, e := range edges {
		out[ir.EdgeKey(e, ir.EdgeKeyOptions{})] = signature(e)
	}
	return out
}

// signature is a deterministic serialization of the entity's full field
// set, used for change detection only, never for identity
func signature(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func classify(before, after map[string]string) DiffKeys {
	var keys DiffKeys
	for k := range after {
		if _, ok := before[k]; !ok {
			keys.Added = append(keys.Added, k)
		} else if before[k] != after[k] {
			keys.Changed = append(keys.Changed, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys.Removed = append(keys.Removed, k)
		}
	}
	sort.Strings(keys.Added)
	sort.Strings(keys.Removed)
	sort.Strings(keys.Changed)
	return keys
}
