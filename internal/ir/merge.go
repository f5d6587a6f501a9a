package ir

import (
	"errors"
	"fmt"
)

// ErrNoInputs is returned by Merge when called with zero graphs
var ErrNoInputs = errors.New("merge requires at least one graph")

// nodeScore ranks a node's richness for conflict resolution. Compared
// lexicographically; a richer node wins an identity collision.
func nodeScore(n IRNode) [8]int {
	return [8]int{
		boolScore(n.Path != ""),
		boolScore(n.Loc != nil),
		boolScore(n.Name != ""),
		len(n.Attributes),
		len(n.Tags),
		boolScore(n.Container != ""),
		boolScore(n.Layer != ""),
		boolScore(n.Context != ""),
	}
}

// edgeScore ranks an edge's richness: confidence first, then location,
// detail count, then presence of each enrichment field.
func edgeScore(e IREdge) [9]float64 {
	return [9]float64{
		e.Confidence,
		boolScoreF(e.Loc != nil),
		float64(len(e.Details)),
		boolScoreF(e.SrcContainer != ""),
		boolScoreF(e.SrcLayer != ""),
		boolScoreF(e.SrcContext != ""),
		boolScoreF(e.DstContainer != ""),
		boolScoreF(e.DstLayer != ""),
		boolScoreF(e.DstContext != ""),
	}
}

func boolScore(b bool) int {
	if b {
		return 1
	}
	return 0
}

func boolScoreF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// preferNode keeps a unless b is strictly richer
func preferNode(a, b IRNode) IRNode {
	sa, sb := nodeScore(a), nodeScore(b)
	for i := range sa {
		if sb[i] != sa[i] {
			if sb[i] > sa[i] {
				return b
			}
			return a
		}
	}
	return a
}

// preferEdge keeps a unless b is strictly richer
func preferEdge(a, b IREdge) IREdge {
	sa, sb := edgeScore(a), edgeScore(b)
	for i := range sa {
		if sb[i] != sa[i] {
			if sb[i] > sa[i] {
				return b
			}
			return a
		}
	}
	return a
}

// mergeMetadata preserves every source graph's metadata in a namespaced way:
// "base" holds the first graph's metadata, "sources" holds each contributor's
// keyed by producer tag, with a numeric suffix on name collisions.
func mergeMetadata(graphs []ArchitectureIR) map[string]any {
	if len(graphs) == 0 {
		return nil
	}

	sources := make(map[string]any, len(graphs))
	seen := make(map[string]int, len(graphs))

	for _, g := range graphs {
		name := g.ProducedBy
		if name == "" {
			name = "unknown"
		}
		if _, ok := sources[name]; ok {
			seen[name]++
			name = fmt.Sprintf("%s#%d", name, seen[name]+1)
		} else {
			seen[name] = 0
		}
		sources[name] = copyMetadata(g.Metadata)
	}

	return map[string]any{
		"base":    copyMetadata(graphs[0].Metadata),
		"sources": sources,
	}
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merger unions multiple graphs (typically one per analyzer) into one.
//
// Node identity is the canonical id; edge identity is (src, dst, dep_type).
// On collision the richer entity wins, with a stable tie-break that keeps
// the earlier-supplied entity, so the result depends only on input order.
type Merger struct{}

// NewMerger creates a Merger
func NewMerger() *Merger {
	return &Merger{}
}

// Merge unions the given graphs. Ordering normalization is left to the
// Normalizer, which runs after merging.
func (m *Merger) Merge(graphs []ArchitectureIR) (ArchitectureIR, error) {
	if len(graphs) == 0 {
		return ArchitectureIR{}, ErrNoInputs
	}

	repoRoot := graphs[0].RepoRoot
	schemaVersion := graphs[0].SchemaVersion
	for _, g := range graphs[1:] {
		if g.SchemaVersion > schemaVersion {
			schemaVersion = g.SchemaVersion
		}
	}

	nodeOrder := make([]string, 0)
	nodesByKey := make(map[string]IRNode)
	for _, g := range graphs {
		for _, n := range g.Nodes {
			k := NodeKey(n)
			if existing, ok := nodesByKey[k]; ok {
				nodesByKey[k] = preferNode(existing, n)
			} else {
				nodesByKey[k] = n
				nodeOrder = append(nodeOrder, k)
			}
		}
	}

	edgeOrder := make([]string, 0)
	edgesByKey := make(map[string]IREdge)
	for _, g := range graphs {
		for _, e := range g.Edges {
			k := EdgeKey(e, EdgeKeyOptions{})
			if existing, ok := edgesByKey[k]; ok {
				edgesByKey[k] = preferEdge(existing, e)
			} else {
				edgesByKey[k] = e
				edgeOrder = append(edgeOrder, k)
			}
		}
	}

	nodes := make([]IRNode, 0, len(nodeOrder))
	for _, k := range nodeOrder {
		nodes = append(nodes, nodesByKey[k])
	}
	edges := make([]IREdge, 0, len(edgeOrder))
	for _, k := range edgeOrder {
		edges = append(edges, edgesByKey[k])
	}

	return ArchitectureIR{
		SchemaVersion: schemaVersion,
		ProducedBy:    "archlint-merged",
		RepoRoot:      repoRoot,
		Nodes:         nodes,
		Edges:         edges,
		Metadata:      mergeMetadata(graphs),
	}, nil
}
