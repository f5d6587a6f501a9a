package rules

import (
	"strings"
	"testing"

	"archlint/internal/ir"
	"archlint/internal/report"
)

func compileOne(t *testing.T, def RuleDef) Rule {
	t.Helper()
	set, errs := NewCompiler().Compile(Document{Rules: []RuleDef{def}})
	if len(errs) > 0 {
		t.Fatalf("Compile() errors = %v", errs)
	}
	if len(set.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(set.Rules))
	}
	return set.Rules[0]
}

func depRule(when Expr) RuleDef {
	return RuleDef{
		ID: "r", Name: "r", Severity: "error", Action: "forbid", Target: "dependency",
		When: when,
	}
}

func nodeRule(when Expr) RuleDef {
	return RuleDef{
		ID: "r", Name: "r", Severity: "warning", Action: "forbid", Target: "node",
		When: when,
	}
}

func TestCompileUnknownFieldFails(t *testing.T) {
	tests := []struct {
		name string
		def  RuleDef
	}{
		{"node field", nodeRule(CompareExpr{Field: "node.flavor", Op: "==", Value: "x"})},
		{"edge field", depRule(CompareExpr{Field: "from.flavor", Op: "==", Value: "x"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, errs := NewCompiler().Compile(Document{Rules: []RuleDef{tt.def}})
			if len(errs) != 1 {
				t.Fatalf("errs = %v, want one compile error", errs)
			}
			if !strings.Contains(errs[0].Message, "unknown") {
				t.Errorf("message = %q, want unknown field error", errs[0].Message)
			}
			if errs[0].Details["rule_id"] != "r" {
				t.Errorf("details = %v, want rule_id", errs[0].Details)
			}
			if len(set.Rules) != 0 {
				t.Errorf("broken rule was compiled anyway")
			}
		})
	}
}

func TestCompileInvalidEnums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RuleDef)
	}{
		{"severity", func(d *RuleDef) { d.Severity = "fatal" }},
		{"action", func(d *RuleDef) { d.Action = "prevent" }},
		{"target", func(d *RuleDef) { d.Target = "edge" }},
		{"operator", func(d *RuleDef) { d.When = CompareExpr{Field: "to.layer", Op: "~=", Value: "x"} }},
		{"missing when", func(d *RuleDef) { d.When = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := depRule(CompareExpr{Field: "to.layer", Op: "==", Value: "x"})
			tt.mutate(&def)
			_, errs := NewCompiler().Compile(Document{Rules: []RuleDef{def}})
			if len(errs) != 1 {
				t.Fatalf("errs = %v, want one compile error", errs)
			}
		})
	}
}

func TestCompileKeepsGoodRulesNextToBadOnes(t *testing.T) {
	doc := Document{Rules: []RuleDef{
		depRule(CompareExpr{Field: "bogus.field", Op: "==", Value: "x"}),
		depRule(CompareExpr{Field: "to.layer", Op: "==", Value: "infra"}),
	}}
	set, errs := NewCompiler().Compile(doc)
	if len(errs) != 1 || len(set.Rules) != 1 {
		t.Errorf("Compile() = %d rules, %d errs; want 1 and 1", len(set.Rules), len(errs))
	}
}

func TestCompileDefaultMessage(t *testing.T) {
	r := compileOne(t, depRule(CompareExpr{Field: "to.layer", Op: "==", Value: "infra"}))
	if !strings.Contains(r.Message, "dependency") {
		t.Errorf("default message = %q", r.Message)
	}
	if r.Severity != report.SeverityError {
		t.Errorf("Severity = %s, want error", r.Severity)
	}
}

func TestCompiledPredicates(t *testing.T) {
	edge := &ir.IREdge{
		Src:      ir.CanonicalId{Language: ir.LangPython, CodeRoot: "repo", FQName: "billing.api.http"},
		Dst:      ir.CanonicalId{Language: ir.LangPython, CodeRoot: "repo", FQName: "billing.infra.db"},
		DepType:  ir.DepImport,
		SrcLayer: "api",
		DstLayer: "infra",
	}

	tests := []struct {
		name string
		when Expr
		want bool
	}{
		{"eq match", CompareExpr{Field: "to.layer", Op: "==", Value: "infra"}, true},
		{"eq miss", CompareExpr{Field: "to.layer", Op: "==", Value: "domain"}, false},
		{"neq", CompareExpr{Field: "from.layer", Op: "!=", Value: "domain"}, true},
		{"in list", CompareExpr{Field: "dep.type", Op: "in", Value: []any{"import", "call"}}, true},
		{"not_in list", CompareExpr{Field: "dep.type", Op: "not_in", Value: []any{"call"}}, true},
		{"glob", CompareExpr{Field: "to.fqname", Op: "glob", Value: "billing.infra.*"}, true},
		{"matches", CompareExpr{Field: "to.fqname", Op: "matches", Value: `infra\.db$`}, true},
		{"contains", CompareExpr{Field: "from.fqname", Op: "contains", Value: "api"}, true},
		{"loc.file nil globs false", CompareExpr{Field: "loc.file", Op: "glob", Value: "*"}, false},
		{
			"and",
			AndExpr{Items: []Expr{
				CompareExpr{Field: "from.layer", Op: "==", Value: "api"},
				CompareExpr{Field: "to.layer", Op: "==", Value: "infra"},
			}},
			true,
		},
		{
			"or short-circuit",
			OrExpr{Items: []Expr{
				CompareExpr{Field: "from.layer", Op: "==", Value: "nope"},
				CompareExpr{Field: "to.layer", Op: "==", Value: "infra"},
			}},
			true,
		},
		{"not", NotExpr{Item: CompareExpr{Field: "to.layer", Op: "==", Value: "infra"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compileOne(t, depRule(tt.when))
			if got := r.EdgeWhen(edge); got != tt.want {
				t.Errorf("EdgeWhen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompiledNodePredicates(t *testing.T) {
	node := &ir.IRNode{
		ID:            ir.CanonicalId{Language: ir.LangPython, CodeRoot: "repo", FQName: "billing.domain.invoice"},
		Kind:          ir.KindModule,
		Path:          "services/billing/domain/invoice.py",
		Layer:         "domain",
		Container:     "billing-service",
		ContainerKind: "service",
		Within:        "service",
		Service:       "billing-service",
		Tags:          []string{"core", "internal"},
	}

	tests := []struct {
		name string
		when Expr
		want bool
	}{
		{"symbol_kind", CompareExpr{Field: "symbol_kind", Op: "==", Value: "module"}, true},
		{"kind is container kind", CompareExpr{Field: "kind", Op: "==", Value: "service"}, true},
		{"within", CompareExpr{Field: "within", Op: "==", Value: "service"}, true},
		{"node prefix accepted", CompareExpr{Field: "node.layer", Op: "==", Value: "domain"}, true},
		{"tags contains", CompareExpr{Field: "tags", Op: "contains", Value: "internal"}, true},
		{"tags contains miss", CompareExpr{Field: "tags", Op: "contains", Value: "public"}, false},
		{"path glob", CompareExpr{Field: "path", Op: "glob", Value: "services/billing/*"}, true},
		{"language", CompareExpr{Field: "language", Op: "==", Value: "python"}, true},
		{"id full string", CompareExpr{Field: "id", Op: "==", Value: "python://repo::billing.domain.invoice"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compileOne(t, nodeRule(tt.when))
			if got := r.NodeWhen(node); got != tt.want {
				t.Errorf("NodeWhen() = %v, want %v", got, tt.want)
			}
		})
	}
}
