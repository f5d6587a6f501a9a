package rules

import (
	"archlint/internal/ir"
	"archlint/internal/report"
)

// Evaluator applies a compiled rule set to an indexed graph.
//
// Semantics:
//   - forbid: every entity matching the predicate (and excluded by no
//     except predicate) produces one violation
//   - require: zero matches produce a single rule-level violation
//     without a location; any match produces none
//   - allow: never produces violations (reserved for allow-listing)
//
// Bad predicates fail open: a predicate that panics on one entity skips
// that entity and the rule keeps evaluating everything else.
type Evaluator struct {
	keys *KeyStrategy
}

// NewEvaluator creates an Evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{keys: NewKeyStrategy()}
}

// Evaluate runs every rule in the set against the index
func (ev *Evaluator) Evaluate(idx *ir.Index, set RuleSet) []report.Violation {
	var out []report.Violation
	for _, rule := range set.Rules {
		switch rule.Target {
		case TargetNode:
			out = append(out, ev.evalNodeRule(idx, rule)...)
		case TargetDependency:
			out = append(out, ev.evalEdgeRule(idx, rule)...)
		}
	}
	return out
}

func (ev *Evaluator) evalNodeRule(idx *ir.Index, rule Rule) []report.Violation {
	var matches []*ir.IRNode
	for i := range idx.Nodes {
		n := &idx.Nodes[i]
		if safeNodePred(rule.NodeWhen, n) && !nodeExcluded(rule.NodeExcept, n) {
			matches = append(matches, n)
		}
	}

	switch rule.Action {
	case ActionRequire:
		if len(matches) == 0 {
			return []report.Violation{ev.requireMissing(rule, "node")}
		}
		return nil
	case ActionAllow:
		return nil
	}

	violations := make([]report.Violation, 0, len(matches))
	for _, n := range matches {
		v := report.Violation{
			Rule:     ruleRef(rule),
			Message:  rule.Message,
			Location: nodeLocation(n),
			Context: map[string]any{
				"target":    "node",
				"node_id":   n.ID.String(),
				"fqname":    n.ID.FQName,
				"kind":      string(n.Kind),
				"path":      n.Path,
				"container": n.Container,
				"layer":     n.Layer,
				"context":   n.Context,
			},
			Suggestion: rule.Suggestion,
		}
		v.Key = ev.keys.KeyFor(v)
		violations = append(violations, v)
	}
	return violations
}

func (ev *Evaluator) evalEdgeRule(idx *ir.Index, rule Rule) []report.Violation {
	var matches []*ir.IREdge
	for i := range idx.Edges {
		e := &idx.Edges[i]
		if safeEdgePred(rule.EdgeWhen, e) && !edgeExcluded(rule.EdgeExcept, e) {
			matches = append(matches, e)
		}
	}

	switch rule.Action {
	case ActionRequire:
		if len(matches) == 0 {
			return []report.Violation{ev.requireMissing(rule, "dependency")}
		}
		return nil
	case ActionAllow:
		return nil
	}

	violations := make([]report.Violation, 0, len(matches))
	for _, e := range matches {
		v := report.Violation{
			Rule:     ruleRef(rule),
			Message:  rule.Message,
			Location: edgeLocation(e),
			Context: map[string]any{
				"target":        "dependency",
				"dep_type":      string(e.DepType),
				"src_id":        e.Src.String(),
				"dst_id":        e.Dst.String(),
				"src_fqname":    e.Src.FQName,
				"dst_fqname":    e.Dst.FQName,
				"src_container": e.SrcContainer,
				"src_layer":     e.SrcLayer,
				"src_context":   e.SrcContext,
				"dst_container": e.DstContainer,
				"dst_layer":     e.DstLayer,
				"dst_context":   e.DstContext,
			},
			Suggestion: rule.Suggestion,
		}
		v.Key = ev.keys.KeyFor(v)
		violations = append(violations, v)
	}
	return violations
}

func (ev *Evaluator) requireMissing(rule Rule, target string) report.Violation {
	msg := rule.Message
	if msg == "" {
		msg = "Required " + target + " pattern not found."
	}
	v := report.Violation{
		Rule:    ruleRef(rule),
		Message: msg,
		Context: map[string]any{
			"target": target,
			"action": "require",
		},
		Suggestion: rule.Suggestion,
	}
	v.Key = ev.keys.KeyFor(v)
	return v
}

func ruleRef(rule Rule) report.RuleRef {
	return report.RuleRef{
		ID:          rule.ID,
		Name:        rule.Name,
		Severity:    rule.Severity,
		Description: rule.Description,
	}
}

func nodeLocation(n *ir.IRNode) *report.Location {
	if n.Loc == nil {
		return nil
	}
	return locFrom(n.Loc)
}

func edgeLocation(e *ir.IREdge) *report.Location {
	if e.Loc == nil {
		return nil
	}
	return locFrom(e.Loc)
}

func locFrom(loc *ir.SourceLoc) *report.Location {
	out := &report.Location{
		File:   loc.File,
		Line:   loc.Start.Line,
		Column: loc.Start.Column,
	}
	if loc.End != nil {
		out.EndLine = loc.End.Line
		out.EndColumn = loc.End.Column
	}
	return out
}

func safeNodePred(p NodePredicate, n *ir.IRNode) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return p(n)
}

func safeEdgePred(p EdgePredicate, e *ir.IREdge) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return p(e)
}

func nodeExcluded(except []NodePredicate, n *ir.IRNode) bool {
	for _, ex := range except {
		if safeNodePred(ex, n) {
			return true
		}
	}
	return false
}

func edgeExcluded(except []EdgePredicate, e *ir.IREdge) bool {
	for _, ex := range except {
		if safeEdgePred(ex, e) {
			return true
		}
	}
	return false
}
