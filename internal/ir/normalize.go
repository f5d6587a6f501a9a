package ir

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NormalizePath converts filesystem-like paths into a stable POSIX form:
// backslashes become slashes, leading "./" is stripped, duplicate slashes
// are collapsed.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// normalizeValue returns a deterministic copy of an attribute/detail value.
// Nested maps are rebuilt so encoding order is key-sorted.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return NormalizeMapping(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// NormalizeMapping returns a deterministic copy of a mapping with nested
// maps and slices normalized recursively.
func NormalizeMapping(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

// NormalizeTags returns tags stripped, de-duplicated, and sorted
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ClampConfidence clamps a confidence value into [0,1], mapping NaN to 0
func ClampConfidence(x float64) float64 {
	if math.IsNaN(x) {
		return 0.0
	}
	if x < 0.0 {
		return 0.0
	}
	if x > 1.0 {
		return 1.0
	}
	return x
}

func normalizeLoc(loc *SourceLoc) *SourceLoc {
	if loc == nil {
		return nil
	}
	file := NormalizePath(loc.File)
	if file == "" {
		file = loc.File
	}
	out := &SourceLoc{
		File:  file,
		Start: loc.Start,
	}
	if loc.End != nil {
		end := *loc.End
		out.End = &end
	}
	return out
}

// NodeSortKey returns the total-ordering key for nodes:
// (kind, id, path, name, container, layer, context).
func NodeSortKey(n IRNode) []string {
	return []string{
		string(n.Kind),
		n.ID.String(),
		n.Path,
		n.Name,
		n.Container,
		n.Layer,
		n.Context,
	}
}

// EdgeSortKey returns the total-ordering key for edges:
// (dep_type, src, dst, location, then the six enrichment fields).
func EdgeSortKey(e IREdge) []string {
	locFile, locLine, locCol := "", "0", "0"
	if e.Loc != nil {
		locFile = e.Loc.File
		locLine = padInt(e.Loc.Start.Line)
		locCol = padInt(e.Loc.Start.Column)
	}
	return []string{
		string(e.DepType),
		e.Src.String(),
		e.Dst.String(),
		locFile,
		locLine,
		locCol,
		e.SrcContainer,
		e.SrcLayer,
		e.SrcContext,
		e.DstContainer,
		e.DstLayer,
		e.DstContext,
	}
}

// padInt renders an int so lexicographic order matches numeric order for any
// realistic line/column value.
func padInt(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%010d", n)
}

func lessKeys(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Normalizer canonicalizes a graph for determinism.
//
// It guarantees stable POSIX paths, stable tag sets, stable ordering of
// nodes/edges, deterministic attribute/detail/metadata copies, and edge
// confidence clamped to [0,1]. Normalize is idempotent.
type Normalizer struct{}

// NewNormalizer creates a Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a canonicalized copy of the graph
func (nz *Normalizer) Normalize(g ArchitectureIR) ArchitectureIR {
	nodes := make([]IRNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nn := n
		nn.Path = NormalizePath(n.Path)
		nn.Loc = normalizeLoc(n.Loc)
		nn.Tags = NormalizeTags(n.Tags)
		nn.Attributes = NormalizeMapping(n.Attributes)
		nodes[i] = nn
	}

	edges := make([]IREdge, len(g.Edges))
	for i, e := range g.Edges {
		ne := e
		ne.Loc = normalizeLoc(e.Loc)
		ne.Confidence = ClampConfidence(e.Confidence)
		ne.Details = NormalizeMapping(e.Details)
		edges[i] = ne
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return lessKeys(NodeSortKey(nodes[i]), NodeSortKey(nodes[j]))
	})
	sort.SliceStable(edges, func(i, j int) bool {
		return lessKeys(EdgeSortKey(edges[i]), EdgeSortKey(edges[j]))
	})

	repoRoot := NormalizePath(g.RepoRoot)
	if repoRoot == "" {
		repoRoot = g.RepoRoot
	}

	return ArchitectureIR{
		SchemaVersion: g.SchemaVersion,
		ProducedBy:    g.ProducedBy,
		RepoRoot:      repoRoot,
		Nodes:         nodes,
		Edges:         edges,
		Metadata:      NormalizeMapping(g.Metadata),
	}
}
