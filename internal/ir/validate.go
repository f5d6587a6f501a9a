package ir

import (
	"fmt"
	"math"

	"archlint/internal/report"
)

// ValidateOptions controls graph validation strictness
type ValidateOptions struct {
	// StrictReferences makes edges pointing at unknown nodes an error.
	// By default dangling references are reported but tolerated, since
	// partial analyzers routinely emit edges into code they did not walk.
	StrictReferences bool

	// MaxNodes and MaxEdges flag oversized graphs when > 0
	MaxNodes int
	MaxEdges int
}

// Validate checks a graph for structural problems and returns them as
// engine errors. Validation is advisory: it never mutates the graph and
// callers decide whether any finding is fatal.
func Validate(g *ArchitectureIR, opts ValidateOptions) []report.EngineError {
	var errs []report.EngineError

	add := func(msg string, details map[string]any) {
		errs = append(errs, report.EngineError{
			Type:    report.ErrAnalyzer,
			Message: msg,
			Details: details,
		})
	}

	if g.SchemaVersion <= 0 {
		add(fmt.Sprintf("schema_version %d is not positive", g.SchemaVersion), map[string]any{
			"schema_version": g.SchemaVersion,
		})
	}
	if opts.MaxNodes > 0 && len(g.Nodes) > opts.MaxNodes {
		add(fmt.Sprintf("graph has %d nodes, limit is %d", len(g.Nodes), opts.MaxNodes), map[string]any{
			"nodes": len(g.Nodes),
			"limit": opts.MaxNodes,
		})
	}
	if opts.MaxEdges > 0 && len(g.Edges) > opts.MaxEdges {
		add(fmt.Sprintf("graph has %d edges, limit is %d", len(g.Edges), opts.MaxEdges), map[string]any{
			"edges": len(g.Edges),
			"limit": opts.MaxEdges,
		})
	}

	seen := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		id := n.ID.String()
		if !n.ID.IsValid() {
			add(fmt.Sprintf("node %d has an empty canonical id component", i), map[string]any{
				"index": i,
				"id":    id,
				"kind":  string(n.Kind),
			})
			continue
		}
		if prev, ok := seen[id]; ok {
			add(fmt.Sprintf("duplicate node id %s", id), map[string]any{
				"id":          id,
				"first_index": prev,
				"index":       i,
			})
			continue
		}
		seen[id] = i
		if n.Kind == "" {
			add(fmt.Sprintf("node %s has no kind", id), map[string]any{"id": id})
		}
	}

	for i, e := range g.Edges {
		src, dst := e.Src.String(), e.Dst.String()
		if !e.Src.IsValid() || !e.Dst.IsValid() {
			add(fmt.Sprintf("edge %d has an empty endpoint component", i), map[string]any{
				"index":    i,
				"src":      src,
				"dst":      dst,
				"dep_type": string(e.DepType),
			})
			continue
		}
		if e.DepType == "" {
			add(fmt.Sprintf("edge %s -> %s has no dep_type", src, dst), map[string]any{
				"src": src,
				"dst": dst,
			})
		}
		if e.Confidence < 0 || e.Confidence > 1 || math.IsNaN(e.Confidence) {
			add(fmt.Sprintf("edge %s -> %s has confidence %v outside [0,1]", src, dst, e.Confidence), map[string]any{
				"src":        src,
				"dst":        dst,
				"confidence": e.Confidence,
			})
		}
		if opts.StrictReferences {
			if _, ok := seen[src]; !ok {
				add(fmt.Sprintf("edge references unknown source node %s", src), map[string]any{
					"src": src,
					"dst": dst,
				})
			}
			if _, ok := seen[dst]; !ok {
				add(fmt.Sprintf("edge references unknown destination node %s", dst), map[string]any{
					"src": src,
					"dst": dst,
				})
			}
		}
	}

	return errs
}
