package pyimports

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// importHit is one import occurrence in a source file.
type importHit struct {
	kind   string // "import" | "from"
	module string // for "from X import Y": X, may be empty
	name   string // for "import X": X; for "from X import Y": Y
	level  int    // relative import dots, 0 = absolute
	line   int
	column int
}

// extractImports walks the syntax tree and collects every import
// statement, including ones nested inside functions or conditionals.
func extractImports(root *sitter.Node, src []byte) []importHit {
	var hits []importHit
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			hits = append(hits, plainImportHits(n, src)...)
		case "import_from_statement":
			hits = append(hits, fromImportHits(n, src)...)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return hits
}

// plainImportHits handles "import a.b, c as d".
func plainImportHits(n *sitter.Node, src []byte) []importHit {
	line, col := startPos(n)
	var hits []importHit
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		name := importedName(child, src)
		if name == "" {
			continue
		}
		hits = append(hits, importHit{
			kind:   "import",
			name:   name,
			line:   line,
			column: col,
		})
	}
	return hits
}

// fromImportHits handles "from a.b import c, d as e", relative forms like
// "from ..x import y", and "from a import *".
func fromImportHits(n *sitter.Node, src []byte) []importHit {
	line, col := startPos(n)

	moduleNode := n.ChildByFieldName("module_name")
	module := ""
	level := 0
	if moduleNode != nil {
		if moduleNode.Type() == "relative_import" {
			for i := 0; i < int(moduleNode.ChildCount()); i++ {
				part := moduleNode.Child(i)
				switch part.Type() {
				case "import_prefix":
					level = strings.Count(part.Content(src), ".")
				case "dotted_name":
					module = part.Content(src)
				}
			}
		} else {
			module = moduleNode.Content(src)
		}
	}

	var hits []importHit
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() && child.EndByte() == moduleNode.EndByte() {
			continue
		}
		name := ""
		if child.Type() == "wildcard_import" {
			name = "*"
		} else {
			name = importedName(child, src)
		}
		if name == "" {
			continue
		}
		hits = append(hits, importHit{
			kind:   "from",
			module: module,
			name:   name,
			level:  level,
			line:   line,
			column: col,
		})
	}
	return hits
}

// importedName reads a dotted_name or aliased_import, returning the
// imported module path (aliases are irrelevant to the dependency graph).
func importedName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "dotted_name":
		return n.Content(src)
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

func startPos(n *sitter.Node) (line, column int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}

// resolveTarget resolves the module-level dependency target of an import:
//
//	import a.b        => a.b
//	from a.b import c => a.b
//	from .c import d  => <src package>.c
//	from . import b   => <src package>
//	from .. import t  => t (when the walk reaches the repo root)
func resolveTarget(srcModule string, hit importHit) string {
	if hit.kind == "import" {
		return hit.name
	}

	base := hit.module
	if hit.level > 0 {
		base = resolveRelativeBase(srcModule, hit.level, hit.module)
	}
	if base != "" {
		return base
	}
	if hit.name != "" && hit.name != "*" {
		return hit.name
	}
	return ""
}

// resolveRelativeBase climbs level packages up from srcModule, then
// descends into module. Example: src "a.b.c", level 2, module "x" => "a.x".
func resolveRelativeBase(srcModule string, level int, module string) string {
	var parts []string
	if srcModule != "" {
		parts = strings.Split(srcModule, ".")
	}
	cut := len(parts) - level
	if cut < 0 {
		cut = 0
	}
	base := parts[:cut]
	if module != "" {
		base = append(append([]string{}, base...), strings.Split(module, ".")...)
	}
	var out []string
	for _, p := range base {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

// moduleFQName maps a repo-relative path to a dotted module name.
// "pkg/__init__.py" becomes "pkg", "pkg/mod.py" becomes "pkg.mod".
func moduleFQName(rel string) string {
	rel = strings.TrimSuffix(rel, ".py")
	parts := strings.Split(rel, "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return "__init__"
	}
	return strings.Join(parts, ".")
}
