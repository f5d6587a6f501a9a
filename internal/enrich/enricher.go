// Package enrich maps code-level graph nodes onto the declared
// architecture: which container owns each path, which layer it falls in,
// which bounded context it belongs to, and the derived service and kind
// fields rules predicate on.
package enrich

import (
	"sort"

	"archlint/internal/ir"
	"archlint/internal/model"
)

// Enricher annotates a graph with architecture metadata from a resolved
// model. Enrichment never mutates its input; it returns a new graph.
//
// Pipeline position: after merge+normalize, before rule evaluation. The
// rules engine, snapshot builder, and reporting all consume the enriched
// graph.
type Enricher struct{}

// NewEnricher creates an Enricher
func NewEnricher() *Enricher {
	return &Enricher{}
}

// Enrich returns a copy of g with nodes and edges annotated from m
func (e *Enricher) Enrich(g ir.ArchitectureIR, m *model.ArchitectureModel) ir.ArchitectureIR {
	nodes := make([]ir.IRNode, len(g.Nodes))
	byID := make(map[string]*ir.IRNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = e.enrichNode(n, m)
		byID[nodes[i].ID.String()] = &nodes[i]
	}

	edges := make([]ir.IREdge, len(g.Edges))
	for i, edge := range g.Edges {
		edges[i] = enrichEdge(edge, byID)
	}

	out := g
	out.Nodes = nodes
	out.Edges = edges
	return out
}

func (e *Enricher) enrichNode(n ir.IRNode, m *model.ArchitectureModel) ir.IRNode {
	containerID := matchContainer(n.Path, m)
	if containerID == "" {
		return n
	}

	n.Container = containerID
	n.Layer = matchLayer(n.Path, containerID, m)
	n.Context = m.ContextFor(containerID)
	n.Service = model.TopLevelOf(containerID)
	n.Within = string(m.WithinKindFor(containerID))

	if c, ok := m.Container(containerID); ok {
		n.ContainerKind = string(c.Kind)
		if len(c.Tags) > 0 {
			n.Tags = ir.NormalizeTags(append(append([]string{}, n.Tags...), c.Tags...))
		}
	}
	return n
}

// matchContainer compares the node's normalized path against every
// container's normalized roots. A match is exact equality or a /-bounded
// prefix; the longest matching root wins, so a nested child with a more
// specific root beats its parent.
func matchContainer(path string, m *model.ArchitectureModel) string {
	if path == "" {
		return ""
	}
	p := ir.NormalizePath(path)

	best := ""
	bestLen := -1
	for containerID, roots := range m.PathRoots {
		for _, root := range roots {
			if p != root && !hasPrefixSlash(p, root) {
				continue
			}
			if len(root) > bestLen || (len(root) == bestLen && containerID < best) {
				best = containerID
				bestLen = len(root)
			}
		}
	}
	return best
}

func hasPrefixSlash(path, root string) bool {
	return len(path) > len(root)+1 && path[:len(root)] == root && path[len(root)] == '/'
}

// matchLayer tries the container's layer patterns in sorted layer-id
// order; the first glob match wins. No match leaves the layer unset.
func matchLayer(path, containerID string, m *model.ArchitectureModel) string {
	patterns := m.LayerPatternsFor(containerID)
	if len(patterns) == 0 {
		return ""
	}
	p := ir.NormalizePath(path)

	layerIDs := make([]string, 0, len(patterns))
	for lid := range patterns {
		layerIDs = append(layerIDs, lid)
	}
	sort.Strings(layerIDs)

	for _, lid := range layerIDs {
		for _, pattern := range patterns[lid] {
			if ir.GlobMatch(pattern, p) {
				return lid
			}
		}
	}
	return ""
}

// enrichEdge copies the already-enriched fields of the edge's endpoint
// nodes. An endpoint absent from the graph stays unenriched on its side.
func enrichEdge(e ir.IREdge, byID map[string]*ir.IRNode) ir.IREdge {
	if src, ok := byID[e.Src.String()]; ok {
		e.SrcContainer = src.Container
		e.SrcLayer = src.Layer
		e.SrcContext = src.Context
		e.SrcService = src.Service
		e.SrcContainerKind = src.ContainerKind
		e.SrcWithin = src.Within
	}
	if dst, ok := byID[e.Dst.String()]; ok {
		e.DstContainer = dst.Container
		e.DstLayer = dst.Layer
		e.DstContext = dst.Context
		e.DstService = dst.Service
		e.DstContainerKind = dst.ContainerKind
		e.DstWithin = dst.Within
	}
	return e
}
