package rules

import (
	"fmt"
	"reflect"
	"strings"

	"archlint/internal/ir"
	"archlint/internal/report"
)

// Target selects what a rule's predicates are evaluated against
type Target string

const (
	TargetNode       Target = "node"
	TargetDependency Target = "dependency"
)

// Action is what a rule does with its matches
type Action string

const (
	ActionForbid  Action = "forbid"
	ActionAllow   Action = "allow"
	ActionRequire Action = "require"
)

// NodePredicate is a compiled predicate over one node
type NodePredicate func(*ir.IRNode) bool

// EdgePredicate is a compiled predicate over one edge
type EdgePredicate func(*ir.IREdge) bool

// Rule is a compiled rule ready for evaluation. Exactly one of the
// node/edge predicate pairs is populated, selected by Target.
type Rule struct {
	ID          string
	Name        string
	Description string

	Severity report.Severity
	Action   Action
	Target   Target

	NodeWhen   NodePredicate
	NodeExcept []NodePredicate
	EdgeWhen   EdgePredicate
	EdgeExcept []EdgePredicate

	Message    string
	Suggestion string
	Tags       []string

	Span *SourceSpan
}

// RuleSet is a compiled collection of rules
type RuleSet struct {
	Rules []Rule
}

// Compiler compiles parsed rule definitions into runtime predicates.
//
// Field references are resolved against a closed vocabulary at compile
// time; a rule naming an unknown field fails compilation instead of
// failing silently during evaluation. Severity, action, and target are
// validated and normalized here as well.
type Compiler struct{}

// NewCompiler creates a Compiler
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile compiles every rule in the document. Rules that fail to
// compile are skipped and reported; the rest of the set still compiles,
// so one broken rule never disables a whole rules file.
func (c *Compiler) Compile(doc Document) (RuleSet, []*Error) {
	var set RuleSet
	var errs []*Error
	for _, def := range doc.Rules {
		rule, err := c.compileRule(def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set.Rules = append(set.Rules, rule)
	}
	return set, errs
}

func (c *Compiler) compileRule(def RuleDef) (Rule, *Error) {
	if def.When == nil {
		return Rule{}, compileErr(def, "rule %q missing 'when' predicate", def.ID)
	}

	severity, err := report.ParseSeverity(def.Severity)
	if err != nil {
		return Rule{}, compileErr(def, "rule %q: %v", def.ID, err)
	}

	var action Action
	switch strings.ToLower(strings.TrimSpace(def.Action)) {
	case "forbid":
		action = ActionForbid
	case "allow":
		action = ActionAllow
	case "require":
		action = ActionRequire
	default:
		return Rule{}, compileErr(def, "rule %q: invalid action %q", def.ID, def.Action)
	}

	var target Target
	switch strings.ToLower(strings.TrimSpace(def.Target)) {
	case "node":
		target = TargetNode
	case "dependency":
		target = TargetDependency
	default:
		return Rule{}, compileErr(def, "rule %q: invalid target %q", def.ID, def.Target)
	}

	rule := Rule{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Severity:    severity,
		Action:      action,
		Target:      target,
		Message:     def.Message,
		Suggestion:  def.Suggestion,
		Tags:        def.Tags,
		Span:        def.Span,
	}
	if rule.Message == "" {
		rule.Message = defaultMessage(def.Name, target)
	}

	switch target {
	case TargetNode:
		when, cerr := c.compileNodeExpr(def.When, def)
		if cerr != nil {
			return Rule{}, cerr
		}
		rule.NodeWhen = when
		for _, ex := range def.Except {
			p, cerr := c.compileNodeExpr(ex, def)
			if cerr != nil {
				return Rule{}, cerr
			}
			rule.NodeExcept = append(rule.NodeExcept, p)
		}
	case TargetDependency:
		when, cerr := c.compileEdgeExpr(def.When, def)
		if cerr != nil {
			return Rule{}, cerr
		}
		rule.EdgeWhen = when
		for _, ex := range def.Except {
			p, cerr := c.compileEdgeExpr(ex, def)
			if cerr != nil {
				return Rule{}, cerr
			}
			rule.EdgeExcept = append(rule.EdgeExcept, p)
		}
	}

	return rule, nil
}

func defaultMessage(name string, target Target) string {
	if target == TargetNode {
		return "Rule '" + name + "' matched a node that violates the architecture contract."
	}
	return "Rule '" + name + "' matched a dependency that violates the architecture contract."
}

// expression compilation

func (c *Compiler) compileNodeExpr(expr Expr, def RuleDef) (NodePredicate, *Error) {
	switch e := expr.(type) {
	case AndExpr:
		items := make([]NodePredicate, 0, len(e.Items))
		for _, item := range e.Items {
			p, err := c.compileNodeExpr(item, def)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		return func(n *ir.IRNode) bool {
			for _, p := range items {
				if !p(n) {
					return false
				}
			}
			return true
		}, nil
	case OrExpr:
		items := make([]NodePredicate, 0, len(e.Items))
		for _, item := range e.Items {
			p, err := c.compileNodeExpr(item, def)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		return func(n *ir.IRNode) bool {
			for _, p := range items {
				if p(n) {
					return true
				}
			}
			return false
		}, nil
	case NotExpr:
		if e.Item == nil {
			return nil, compileErr(def, "rule %q: 'not' expression missing item", def.ID)
		}
		inner, err := c.compileNodeExpr(e.Item, def)
		if err != nil {
			return nil, err
		}
		return func(n *ir.IRNode) bool { return !inner(n) }, nil
	case CompareExpr:
		getter, err := nodeFieldGetter(e.Field, def)
		if err != nil {
			return nil, err
		}
		opFn, ok := operators[e.Op]
		if !ok {
			return nil, compileErr(def, "rule %q: unsupported operator %q", def.ID, e.Op)
		}
		rhs := e.Value
		return func(n *ir.IRNode) bool { return opFn(getter(n), rhs) }, nil
	}
	return nil, compileErr(def, "rule %q: unsupported expression node %T", def.ID, expr)
}

func (c *Compiler) compileEdgeExpr(expr Expr, def RuleDef) (EdgePredicate, *Error) {
	switch e := expr.(type) {
	case AndExpr:
		items := make([]EdgePredicate, 0, len(e.Items))
		for _, item := range e.Items {
			p, err := c.compileEdgeExpr(item, def)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		return func(edge *ir.IREdge) bool {
			for _, p := range items {
				if !p(edge) {
					return false
				}
			}
			return true
		}, nil
	case OrExpr:
		items := make([]EdgePredicate, 0, len(e.Items))
		for _, item := range e.Items {
			p, err := c.compileEdgeExpr(item, def)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		return func(edge *ir.IREdge) bool {
			for _, p := range items {
				if p(edge) {
					return true
				}
			}
			return false
		}, nil
	case NotExpr:
		if e.Item == nil {
			return nil, compileErr(def, "rule %q: 'not' expression missing item", def.ID)
		}
		inner, err := c.compileEdgeExpr(e.Item, def)
		if err != nil {
			return nil, err
		}
		return func(edge *ir.IREdge) bool { return !inner(edge) }, nil
	case CompareExpr:
		getter, err := edgeFieldGetter(e.Field, def)
		if err != nil {
			return nil, err
		}
		opFn, ok := operators[e.Op]
		if !ok {
			return nil, compileErr(def, "rule %q: unsupported operator %q", def.ID, e.Op)
		}
		rhs := e.Value
		return func(edge *ir.IREdge) bool { return opFn(getter(edge), rhs) }, nil
	}
	return nil, compileErr(def, "rule %q: unsupported expression node %T", def.ID, expr)
}

// field vocabulary
//
// The accessor tables below are the complete set of fields rules may
// reference. Node fields accept an optional "node." prefix.

var nodeFields = map[string]func(*ir.IRNode) any{
	"symbol_kind": func(n *ir.IRNode) any { return string(n.Kind) },
	"kind":        func(n *ir.IRNode) any { return n.ContainerKind },
	"within":      func(n *ir.IRNode) any { return n.Within },
	"service":     func(n *ir.IRNode) any { return n.Service },
	"path":        func(n *ir.IRNode) any { return n.Path },
	"name":        func(n *ir.IRNode) any { return n.Name },
	"layer":       func(n *ir.IRNode) any { return n.Layer },
	"context":     func(n *ir.IRNode) any { return n.Context },
	"container":   func(n *ir.IRNode) any { return n.Container },
	"tags":        func(n *ir.IRNode) any { return n.Tags },
	"fqname":      func(n *ir.IRNode) any { return n.ID.FQName },
	"id.fqname":   func(n *ir.IRNode) any { return n.ID.FQName },
	"id":          func(n *ir.IRNode) any { return n.ID.String() },
	"code_root":   func(n *ir.IRNode) any { return n.ID.CodeRoot },
	"language":    func(n *ir.IRNode) any { return string(n.ID.Language) },
}

var edgeFields = map[string]func(*ir.IREdge) any{
	"from.layer":     func(e *ir.IREdge) any { return e.SrcLayer },
	"to.layer":       func(e *ir.IREdge) any { return e.DstLayer },
	"from.context":   func(e *ir.IREdge) any { return e.SrcContext },
	"to.context":     func(e *ir.IREdge) any { return e.DstContext },
	"from.container": func(e *ir.IREdge) any { return e.SrcContainer },
	"to.container":   func(e *ir.IREdge) any { return e.DstContainer },
	"from.service":   func(e *ir.IREdge) any { return e.SrcService },
	"to.service":     func(e *ir.IREdge) any { return e.DstService },
	"from.kind":      func(e *ir.IREdge) any { return e.SrcContainerKind },
	"to.kind":        func(e *ir.IREdge) any { return e.DstContainerKind },
	"from.within":    func(e *ir.IREdge) any { return e.SrcWithin },
	"to.within":      func(e *ir.IREdge) any { return e.DstWithin },
	"from.fqname":    func(e *ir.IREdge) any { return e.Src.FQName },
	"to.fqname":      func(e *ir.IREdge) any { return e.Dst.FQName },
	"from.id":        func(e *ir.IREdge) any { return e.Src.String() },
	"to.id":          func(e *ir.IREdge) any { return e.Dst.String() },
	"dep.type":       func(e *ir.IREdge) any { return string(e.DepType) },
	"loc.file": func(e *ir.IREdge) any {
		if e.Loc == nil {
			return nil
		}
		return e.Loc.File
	},
}

func nodeFieldGetter(field string, def RuleDef) (func(*ir.IRNode) any, *Error) {
	f := strings.TrimSpace(field)
	f = strings.TrimPrefix(f, "node.")
	if f == "" {
		return nil, compileErr(def, "rule %q: empty field reference", def.ID)
	}
	getter, ok := nodeFields[f]
	if !ok {
		return nil, compileErr(def, "rule %q: unknown node field %q", def.ID, field)
	}
	return getter, nil
}

func edgeFieldGetter(field string, def RuleDef) (func(*ir.IREdge) any, *Error) {
	f := strings.TrimSpace(field)
	if f == "" {
		return nil, compileErr(def, "rule %q: empty field reference", def.ID)
	}
	getter, ok := edgeFields[f]
	if !ok {
		return nil, compileErr(def, "rule %q: unknown dependency field %q", def.ID, field)
	}
	return getter, nil
}

// operators

var operators = map[string]func(left, right any) bool{
	"==":       opEq,
	"!=":       func(l, r any) bool { return !opEq(l, r) },
	"in":       opIn,
	"not_in":   func(l, r any) bool { return !opIn(l, r) },
	"glob":     opGlob,
	"matches":  opMatches,
	"contains": opContains,
}

func opEq(left, right any) bool {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return ls == rs
		}
	}
	return reflect.DeepEqual(left, right)
}

// opIn tests left's membership in right: element of a list, or substring
// of a string like "a,b,c"
func opIn(left, right any) bool {
	switch r := right.(type) {
	case nil:
		return false
	case []any:
		for _, item := range r {
			if opEq(left, item) {
				return true
			}
		}
		return false
	case []string:
		ls, ok := left.(string)
		if !ok {
			return false
		}
		for _, item := range r {
			if item == ls {
				return true
			}
		}
		return false
	case string:
		return strings.Contains(r, toString(left))
	}
	return false
}

func opGlob(left, right any) bool {
	if left == nil {
		return false
	}
	return ir.GlobMatch(toString(right), toString(left))
}

func opMatches(left, right any) bool {
	if left == nil {
		return false
	}
	return ir.RegexSearch(toString(right), toString(left))
}

// opContains is the reverse of "in": right inside left. For list-valued
// fields (tags) it is membership; for strings a substring test.
func opContains(left, right any) bool {
	switch l := left.(type) {
	case nil:
		return false
	case []string:
		rs := toString(right)
		for _, item := range l {
			if item == rs {
				return true
			}
		}
		return false
	case []any:
		for _, item := range l {
			if opEq(item, right) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(toString(l), toString(right))
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
