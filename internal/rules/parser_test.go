package rules

import (
	"testing"
)

const sampleRules = `
rules:
  - id: no-domain-to-infra
    name: Domain must not depend on Infra
    severity: error
    action: forbid
    target: dependency
    message: Domain code must stay infrastructure-free.
    suggestion: Introduce a port interface in the domain layer.
    tags: [layering]
    when:
      all:
        - field: from.layer
          op: ==
          value: domain
        - field: to.layer
          op: ==
          value: infra
    except:
      - field: from.fqname
        op: glob
        value: "*.testsupport.*"
  - id: must-have-domain
    name: Domain layer must exist
    action: require
    target: node
    when:
      any:
        - "node.layer == domain"
`

func TestParseText(t *testing.T) {
	doc, err := NewParser().ParseText(sampleRules, "arch.rules.yaml")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if len(doc.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(doc.Rules))
	}

	r := doc.Rules[0]
	if r.ID != "no-domain-to-infra" || r.Severity != "error" || r.Action != "forbid" || r.Target != "dependency" {
		t.Errorf("rule header = %+v", r)
	}
	and, ok := r.When.(AndExpr)
	if !ok || len(and.Items) != 2 {
		t.Fatalf("When = %#v, want AndExpr with 2 items", r.When)
	}
	cmp, ok := and.Items[0].(CompareExpr)
	if !ok || cmp.Field != "from.layer" || cmp.Op != "==" || cmp.Value != "domain" {
		t.Errorf("first compare = %#v", and.Items[0])
	}
	if len(r.Except) != 1 {
		t.Fatalf("len(Except) = %d, want 1", len(r.Except))
	}
	if len(r.Tags) != 1 || r.Tags[0] != "layering" {
		t.Errorf("Tags = %v", r.Tags)
	}

	req := doc.Rules[1]
	if req.Action != "require" || req.Target != "node" {
		t.Errorf("require rule = %+v", req)
	}
	or, ok := req.When.(OrExpr)
	if !ok || len(or.Items) != 1 {
		t.Fatalf("When = %#v, want OrExpr", req.When)
	}
	inline, ok := or.Items[0].(CompareExpr)
	if !ok || inline.Field != "node.layer" || inline.Value != "domain" {
		t.Errorf("inline compare = %#v", or.Items[0])
	}
	if req.Severity != "error" {
		t.Errorf("default severity = %q, want error", req.Severity)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no rules key", "foo: bar"},
		{"rules not a list", "rules: {a: b}"},
		{"rule missing id", "rules:\n  - name: x\n    when: {all: []}"},
		{"rule missing when", "rules:\n  - id: a\n    name: x"},
		{"when without combinator", "rules:\n  - id: a\n    name: x\n    when: {field: path}"},
		{"invalid yaml", "rules: ["},
		{"bad inline predicate", "rules:\n  - id: a\n    name: x\n    when:\n      all: [\"just-two words\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseText(tt.text, "bad.yaml")
			rerr, ok := err.(*Error)
			if !ok {
				t.Fatalf("error = %v, want *Error", err)
			}
			if rerr.Code != codeParse {
				t.Errorf("Code = %s, want %s", rerr.Code, codeParse)
			}
			if rerr.AsEngineError().Type != "parse_error" {
				t.Errorf("engine error type = %s, want parse_error", rerr.AsEngineError().Type)
			}
		})
	}
}

func TestParseNestedCombinators(t *testing.T) {
	text := `
rules:
  - id: nested
    name: Nested
    target: node
    when:
      not:
        any:
          - field: layer
            op: ==
            value: domain
          - field: layer
            op: ==
            value: api
`
	doc, err := NewParser().ParseText(text, "")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	not, ok := doc.Rules[0].When.(NotExpr)
	if !ok {
		t.Fatalf("When = %#v, want NotExpr", doc.Rules[0].When)
	}
	if _, ok := not.Item.(OrExpr); !ok {
		t.Errorf("Not item = %#v, want OrExpr", not.Item)
	}
}

func TestParseLiteralLists(t *testing.T) {
	text := `
rules:
  - id: kinds
    name: Kinds
    target: node
    when:
      all:
        - field: symbol_kind
          op: in
          value: [module, class]
        - "layer in [domain,api]"
`
	doc, err := NewParser().ParseText(text, "")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	and := doc.Rules[0].When.(AndExpr)

	yamlList := and.Items[0].(CompareExpr).Value
	if list, ok := yamlList.([]any); !ok || len(list) != 2 {
		t.Errorf("yaml list literal = %#v", yamlList)
	}
	inlineList := and.Items[1].(CompareExpr).Value
	if list, ok := inlineList.([]any); !ok || len(list) != 2 || list[1] != "api" {
		t.Errorf("inline list literal = %#v", inlineList)
	}
}

func TestConcatDocuments(t *testing.T) {
	a := Document{Rules: []RuleDef{{ID: "a"}}}
	b := Document{Rules: []RuleDef{{ID: "b"}, {ID: "c"}}}
	got := ConcatDocuments([]Document{a, b})
	if len(got.Rules) != 3 || got.Rules[2].ID != "c" {
		t.Errorf("ConcatDocuments = %v", got.Rules)
	}
}
