package model

import (
	"sort"
	"strings"
)

// Resolver flattens nested containers and computes the model's lookup
// tables. It returns a new model; the input is never mutated.
type Resolver struct{}

// NewResolver creates a Resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve flattens the container tree into dot-qualified ids
// ("parent.child"), propagating context down the tree (a child without an
// explicit context inherits its nearest ancestor's), and precomputes per
// container: normalized sorted code roots and the layer-id to pattern-set
// map (patterns normalized, deduplicated, sorted by layer id).
func (r *Resolver) Resolve(m *ArchitectureModel) *ArchitectureModel {
	flat := make(map[string]Container)
	flattenContainers("", "", m.Containers, flat)

	containerToContext := make(map[string]string)
	pathRoots := make(map[string][]string)
	layerPatterns := make(map[string]map[string][]string)

	for id, c := range flat {
		if c.Context != "" {
			containerToContext[id] = c.Context
		}
		if c.Code == nil {
			continue
		}

		roots := make([]string, 0, len(c.Code.Roots))
		for _, root := range c.Code.Roots {
			if strings.TrimSpace(root) == "" {
				continue
			}
			roots = append(roots, normRoot(root))
		}
		pathRoots[id] = sortedUnique(roots)

		layerMap := make(map[string][]string, len(c.Code.Layers))
		for lid, layer := range c.Code.Layers {
			pats := make([]string, 0, len(layer.Patterns))
			for _, p := range layer.Patterns {
				if strings.TrimSpace(p) == "" {
					continue
				}
				pats = append(pats, normGlob(p))
			}
			layerMap[lid] = sortedUnique(pats)
		}
		layerPatterns[id] = layerMap
	}

	return &ArchitectureModel{
		Version:    m.Version,
		Contexts:   m.Contexts,
		Containers: flat,
		Relations:  m.Relations,
		Metadata:   m.Metadata,

		ContainerToContext: containerToContext,
		PathRoots:          pathRoots,
		LayerPatterns:      layerPatterns,
	}
}

func flattenContainers(prefix, inheritedContext string, containers map[string]Container, out map[string]Container) {
	for id, c := range containers {
		qualified := id
		if prefix != "" {
			qualified = prefix + "." + id
		}

		ctx := c.Context
		if ctx == "" {
			ctx = inheritedContext
		}

		flat := c
		flat.ID = qualified
		flat.Context = ctx
		flat.Children = nil
		out[qualified] = flat

		if len(c.Children) > 0 {
			flattenContainers(qualified, ctx, c.Children, out)
		}
	}
}

func normRoot(p string) string {
	s := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	for strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	if s != "/" {
		s = strings.TrimRight(s, "/")
	}
	return s
}

func normGlob(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
