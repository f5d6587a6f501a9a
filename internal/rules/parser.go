package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser parses YAML rule documents.
//
// Format:
//
//	rules:
//	  - id: no-domain-to-infra
//	    name: Domain must not depend on Infra
//	    severity: error
//	    action: forbid
//	    target: dependency
//	    when:
//	      all:
//	        - field: from.layer
//	          op: ==
//	          value: domain
//	        - field: to.layer
//	          op: ==
//	          value: infra
//	    except:
//	      - field: from.fqname
//	        op: glob
//	        value: "*.testsupport.*"
//
// Predicate leaves may also be inline strings ("from.layer == domain").
type Parser struct{}

// NewParser creates a Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a rules file
func (p *Parser) ParseFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, parseErr(path, "cannot read rules file: %v", err)
	}
	return p.ParseText(string(raw), path)
}

// ParseText parses rule document text; filename is used in errors only
func (p *Parser) ParseText(text, filename string) (Document, error) {
	if filename == "" {
		filename = "<rules>"
	}

	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return Document{}, parseErr(filename, "invalid YAML in rules file: %v", err)
	}

	root, ok := doc.(map[string]any)
	if !ok || root["rules"] == nil {
		return Document{}, parseErr(filename, "rules file must contain a top-level 'rules:' list")
	}
	list, ok := root["rules"].([]any)
	if !ok {
		return Document{}, parseErr(filename, "'rules' must be a list")
	}

	out := Document{Span: &SourceSpan{File: filename}}
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return Document{}, parseErr(filename, "rules[%d] must be a mapping", i)
		}
		r, err := p.parseRule(m, filename)
		if err != nil {
			return Document{}, err
		}
		out.Rules = append(out.Rules, r)
	}
	return out, nil
}

func (p *Parser) parseRule(m map[string]any, filename string) (RuleDef, error) {
	id, err := reqString(m, "id", filename)
	if err != nil {
		return RuleDef{}, err
	}
	name, err := reqString(m, "name", filename)
	if err != nil {
		return RuleDef{}, err
	}

	whenRaw, ok := m["when"]
	if !ok || whenRaw == nil {
		return RuleDef{}, parseErr(filename, "rule %q missing 'when:' block", id)
	}
	when, err := p.parseWhen(whenRaw, filename)
	if err != nil {
		return RuleDef{}, err
	}

	var except []Expr
	if exRaw, ok := m["except"]; ok && exRaw != nil {
		exList, ok := exRaw.([]any)
		if !ok {
			return RuleDef{}, parseErr(filename, "rule %q: 'except' must be a list", id)
		}
		for _, item := range exList {
			ex, err := p.parsePredItem(item, filename)
			if err != nil {
				return RuleDef{}, err
			}
			except = append(except, ex)
		}
	}

	return RuleDef{
		ID:          id,
		Name:        name,
		Description: optString(m, "description"),
		Severity:    optStringDefault(m, "severity", "error"),
		Action:      optStringDefault(m, "action", "forbid"),
		Target:      optStringDefault(m, "target", "dependency"),
		When:        when,
		Except:      except,
		Message:     optString(m, "message"),
		Suggestion:  optString(m, "suggestion"),
		Tags:        stringList(m["tags"]),
		Span:        &SourceSpan{File: filename},
	}, nil
}

func (p *Parser) parseWhen(raw any, filename string) (Expr, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, parseErr(filename, "'when' must be a mapping")
	}

	if items, ok := m["all"]; ok {
		list, ok := items.([]any)
		if !ok {
			return nil, parseErr(filename, "'when.all' must be a list")
		}
		exprs, err := p.parsePredItems(list, filename)
		if err != nil {
			return nil, err
		}
		return AndExpr{Items: exprs}, nil
	}
	if items, ok := m["any"]; ok {
		list, ok := items.([]any)
		if !ok {
			return nil, parseErr(filename, "'when.any' must be a list")
		}
		exprs, err := p.parsePredItems(list, filename)
		if err != nil {
			return nil, err
		}
		return OrExpr{Items: exprs}, nil
	}
	if item, ok := m["not"]; ok {
		inner, err := p.parsePredItem(item, filename)
		if err != nil {
			return nil, err
		}
		return NotExpr{Item: inner}, nil
	}

	return nil, parseErr(filename, "'when' must contain one of: all, any, not")
}

func (p *Parser) parsePredItems(list []any, filename string) ([]Expr, error) {
	out := make([]Expr, 0, len(list))
	for _, item := range list {
		e, err := p.parsePredItem(item, filename)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *Parser) parsePredItem(item any, filename string) (Expr, error) {
	switch v := item.(type) {
	case map[string]any:
		if _, ok := v["all"]; ok {
			return p.parseWhen(v, filename)
		}
		if _, ok := v["any"]; ok {
			return p.parseWhen(v, filename)
		}
		if _, ok := v["not"]; ok {
			return p.parseWhen(v, filename)
		}

		field, _ := v["field"].(string)
		if strings.TrimSpace(field) == "" {
			return nil, parseErr(filename, "predicate item missing non-empty 'field'")
		}
		op := "=="
		if rawOp, ok := v["op"]; ok {
			s, ok := rawOp.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, parseErr(filename, "predicate item has invalid 'op'")
			}
			op = strings.TrimSpace(s)
		}
		return CompareExpr{
			Field: strings.TrimSpace(field),
			Op:    op,
			Value: parseLiteral(v["value"]),
		}, nil

	case string:
		return parseInlineCompare(v, filename)
	}
	return nil, parseErr(filename, "unsupported predicate item: %v", item)
}

// parseInlineCompare parses "field op value" shorthand
func parseInlineCompare(text, filename string) (Expr, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) < 3 {
		return nil, parseErr(filename, "invalid inline predicate: %q", text)
	}
	return CompareExpr{
		Field: parts[0],
		Op:    parts[1],
		Value: parseLiteral(strings.Join(parts[2:], " ")),
	}, nil
}

// parseLiteral normalizes a YAML scalar or list. Bracketed strings like
// "[a, b]" are split into string lists for the inline shorthand.
func parseLiteral(value any) any {
	switch v := value.(type) {
	case nil, bool, int, int64, float64:
		return v
	case []any:
		return v
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			inner := strings.TrimSpace(s[1 : len(s)-1])
			if inner == "" {
				return []any{}
			}
			parts := strings.Split(inner, ",")
			out := make([]any, 0, len(parts))
			for _, p := range parts {
				out = append(out, strings.TrimSpace(p))
			}
			return out
		}
		return s
	}
	return fmt.Sprintf("%v", value)
}

func reqString(m map[string]any, key, filename string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", parseErr(filename, "missing required key: %s", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", parseErr(filename, "key %q must be a non-empty string", key)
	}
	return strings.TrimSpace(s), nil
}

func optString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func optStringDefault(m map[string]any, key, def string) string {
	if s := optString(m, key); s != "" {
		return s
	}
	return def
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
