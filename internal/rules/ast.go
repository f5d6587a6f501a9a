// Package rules implements the architecture rule DSL: parsing rule
// documents, compiling predicates against a closed field vocabulary, and
// evaluating compiled rules over an indexed graph.
package rules

// SourceSpan is an optional source location attached to parsed rules
type SourceSpan struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Expr is a predicate expression tree node
type Expr interface {
	isExpr()
}

// AndExpr is true when all items are true
type AndExpr struct {
	Items []Expr
}

// OrExpr is true when any item is true
type OrExpr struct {
	Items []Expr
}

// NotExpr negates its item
type NotExpr struct {
	Item Expr
}

// CompareExpr compares a field to a literal.
//
// Examples:
//
//	from.layer == "domain"
//	node.path matches ".*test.*"
//	to.tags contains "internal"
//	node.kind in ["module", "class"]
type CompareExpr struct {
	Field string
	Op    string
	Value any
}

func (AndExpr) isExpr()     {}
func (OrExpr) isExpr()      {}
func (NotExpr) isExpr()     {}
func (CompareExpr) isExpr() {}

// RuleDef is a single rule in source form, before compilation
type RuleDef struct {
	ID          string
	Name        string
	Description string

	Severity string
	Action   string
	Target   string

	When   Expr
	Except []Expr

	Message    string
	Suggestion string
	Tags       []string

	Span *SourceSpan
}

// Document is the parse result of one rules file
type Document struct {
	Rules    []RuleDef
	Span     *SourceSpan
	Metadata map[string]any
}

// ConcatDocuments merges multiple parsed rule documents order-preserving,
// the form the compiler consumes when several rule files are configured.
func ConcatDocuments(docs []Document) Document {
	var out Document
	for _, d := range docs {
		out.Rules = append(out.Rules, d.Rules...)
	}
	return out
}
