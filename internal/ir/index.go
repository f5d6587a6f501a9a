package ir

import "sort"

// Index provides O(1) lookups over a graph for the rule evaluator.
//
// All groupings and adjacency lists are derived, read-only views sorted by
// the canonical node/edge ordering; they never create new identity.
type Index struct {
	// Nodes in the graph's canonical order
	Nodes []IRNode
	// NodesByID maps canonical id string form to the node
	NodesByID map[string]IRNode
	// NodesByKind groups nodes by symbol kind
	NodesByKind map[SymbolKind][]IRNode
	// NodesByContainer/NodesByLayer/NodesByContext group by enrichment
	NodesByContainer map[string][]IRNode
	NodesByLayer     map[string][]IRNode
	NodesByContext   map[string][]IRNode

	// Edges in canonical edge order
	Edges []IREdge
	// EdgesByType groups edges by dependency kind
	EdgesByType map[DepType][]IREdge

	// OutEdges/InEdges are adjacency views keyed by canonical id string
	OutEdges map[string][]IREdge
	InEdges  map[string][]IREdge
}

// Node returns the node with the given canonical id string, if present
func (idx *Index) Node(id string) (IRNode, bool) {
	n, ok := idx.NodesByID[id]
	return n, ok
}

// OutEdgesOf returns the out-adjacency of the given node id
func (idx *Index) OutEdgesOf(id string) []IREdge {
	return idx.OutEdges[id]
}

// InEdgesOf returns the in-adjacency of the given node id
func (idx *Index) InEdgesOf(id string) []IREdge {
	return idx.InEdges[id]
}

// BuildIndex builds an Index over the graph. Deterministic: every grouping
// is internally sorted by the stable node/edge ordering keys.
func BuildIndex(g ArchitectureIR) *Index {
	idx := &Index{
		Nodes:            g.Nodes,
		NodesByID:        make(map[string]IRNode, len(g.Nodes)),
		NodesByKind:      make(map[SymbolKind][]IRNode),
		NodesByContainer: make(map[string][]IRNode),
		NodesByLayer:     make(map[string][]IRNode),
		NodesByContext:   make(map[string][]IRNode),
		EdgesByType:      make(map[DepType][]IREdge),
		OutEdges:         make(map[string][]IREdge),
		InEdges:          make(map[string][]IREdge),
	}

	for _, n := range g.Nodes {
		idx.NodesByID[n.ID.String()] = n
		idx.NodesByKind[n.Kind] = append(idx.NodesByKind[n.Kind], n)
		if n.Container != "" {
			idx.NodesByContainer[n.Container] = append(idx.NodesByContainer[n.Container], n)
		}
		if n.Layer != "" {
			idx.NodesByLayer[n.Layer] = append(idx.NodesByLayer[n.Layer], n)
		}
		if n.Context != "" {
			idx.NodesByContext[n.Context] = append(idx.NodesByContext[n.Context], n)
		}
	}

	sortNodeGroups(idx.NodesByKind)
	sortNodeGroupsStr(idx.NodesByContainer)
	sortNodeGroupsStr(idx.NodesByLayer)
	sortNodeGroupsStr(idx.NodesByContext)

	edges := make([]IREdge, len(g.Edges))
	copy(edges, g.Edges)
	sort.SliceStable(edges, func(i, j int) bool {
		return lessKeys(EdgeSortKey(edges[i]), EdgeSortKey(edges[j]))
	})
	idx.Edges = edges

	for _, e := range edges {
		idx.EdgesByType[e.DepType] = append(idx.EdgesByType[e.DepType], e)
		src := e.Src.String()
		dst := e.Dst.String()
		idx.OutEdges[src] = append(idx.OutEdges[src], e)
		idx.InEdges[dst] = append(idx.InEdges[dst], e)
	}

	return idx
}

func sortNodeGroups(groups map[SymbolKind][]IRNode) {
	for _, nodes := range groups {
		sortNodes(nodes)
	}
}

func sortNodeGroupsStr(groups map[string][]IRNode) {
	for _, nodes := range groups {
		sortNodes(nodes)
	}
}

func sortNodes(nodes []IRNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return lessKeys(NodeSortKey(nodes[i]), NodeSortKey(nodes[j]))
	})
}
