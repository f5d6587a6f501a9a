package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// stableString converts arbitrary attribute/detail values to a stable string.
// Maps are key-sorted, slices keep their order, nil becomes the empty string.
func stableString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+stableString(v[k]))
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stableString(item))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// hashParts produces a short, stable hash from string parts.
// Each part is followed by a pipe so adjacent parts cannot collide.
func hashParts(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NodeKey returns the stable identity key for a node.
//
// It uses only the canonical id, never enrichment fields: node identity must
// not change when mapping adds container/layer, and snapshots must diff
// cleanly across runs.
func NodeKey(n IRNode) string {
	return n.ID.String()
}

// EdgeKeyOptions selects which optional fields participate in edge identity.
// Both default to false; the opt-ins exist for exact-duplicate detection
// only, not for default identity.
type EdgeKeyOptions struct {
	IncludeLocation bool
	IncludeDetails  bool
}

// EdgeKey returns the stable identity key for an edge.
// Default identity is (src, dst, dep_type).
func EdgeKey(e IREdge, opts EdgeKeyOptions) string {
	parts := []string{
		e.Src.String(),
		e.Dst.String(),
		string(e.DepType),
	}

	if opts.IncludeLocation && e.Loc != nil {
		parts = append(parts,
			e.Loc.File,
			strconv.Itoa(e.Loc.Start.Line),
			strconv.Itoa(e.Loc.Start.Column),
		)
	}

	if opts.IncludeDetails && len(e.Details) > 0 {
		parts = append(parts, stableString(e.Details))
	}

	return hashParts(parts)
}

// DedupeNodes removes nodes with duplicate identity keys, keeping the first
// occurrence of each key.
func DedupeNodes(nodes []IRNode) []IRNode {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]IRNode, 0, len(nodes))

	for _, n := range nodes {
		k := NodeKey(n)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}

	return out
}

// DedupeEdges removes edges with duplicate identity keys, keeping the first
// occurrence of each key.
func DedupeEdges(edges []IREdge, opts EdgeKeyOptions) []IREdge {
	seen := make(map[string]struct{}, len(edges))
	out := make([]IREdge, 0, len(edges))

	for _, e := range edges {
		k := EdgeKey(e, opts)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}

	return out
}
