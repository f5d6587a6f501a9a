// Package pyimports builds a module-level Python import graph.
//
// Scope: one node per *.py module plus best-effort external nodes, and one
// import edge per (src, dst) pair. Symbol-level resolution is out of scope.
package pyimports

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"archlint/internal/analyzer"
	"archlint/internal/ir"
)

// PluginID identifies this analyzer in produced_by and reporting
const PluginID = "archlint-python"

const pluginVersion = "0.1.0"

// Analyzer extracts Python import dependencies with tree-sitter.
type Analyzer struct{}

// New creates a Python import analyzer
func New() *Analyzer {
	return &Analyzer{}
}

// Language returns the language this analyzer covers
func (a *Analyzer) Language() ir.Language {
	return ir.LangPython
}

// PluginID returns the stable analyzer id
func (a *Analyzer) PluginID() string {
	return PluginID
}

// CanAnalyze reports whether the repository contains at least one Python
// file outside the default-skipped directories. It does not parse anything.
func (a *Analyzer) CanAnalyze(repoRoot string) bool {
	if _, err := os.Stat(repoRoot); err != nil {
		return false
	}
	return hasPythonFile(repoRoot)
}

// Analyze scans the repository and returns the module-level import graph.
// Unreadable or oversized files are skipped; a broken file never fails the
// whole scan.
func (a *Analyzer) Analyze(ctx context.Context, cfg analyzer.Config) (ir.ArchitectureIR, error) {
	root, err := cfg.NormalizedRepoRoot()
	if err != nil {
		return ir.ArchitectureIR{}, fmt.Errorf("resolve repo root: %w", err)
	}

	includes := normalizeIncludes(root, cfg.Target.IncludePaths)
	excludes := cfg.Target.ExcludeGlobs
	files := collectPythonFiles(root, includes, excludes, cfg.FileSizeLimit())
	if cfg.Deterministic {
		sort.Strings(files)
	}

	// Machine-independent code root: the repo folder name.
	codeRoot := baseName(root)

	var nodes []ir.IRNode
	var edges []ir.IREdge

	fileToModule := make(map[string]string, len(files))
	for _, f := range files {
		rel := relPosix(root, f)
		mod := moduleFQName(rel)
		fileToModule[f] = mod
		nodes = append(nodes, ir.IRNode{
			ID:   ir.CanonicalId{Language: ir.LangPython, CodeRoot: codeRoot, FQName: mod},
			Kind: ir.KindModule,
			Name: lastSegment(mod),
			Path: rel,
			Loc: &ir.SourceLoc{
				File:  rel,
				Start: ir.SourcePos{Line: 1, Column: 1},
			},
		})
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return ir.ArchitectureIR{}, err
		}

		rel := relPosix(root, f)
		srcMod := fileToModule[f]
		srcID := ir.CanonicalId{Language: ir.LangPython, CodeRoot: codeRoot, FQName: srcMod}

		src, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		tree, err := parser.ParseCtx(ctx, nil, src)
		if err != nil {
			if ctx.Err() != nil {
				return ir.ArchitectureIR{}, ctx.Err()
			}
			continue
		}

		for _, hit := range extractImports(tree.RootNode(), src) {
			dstMod := resolveTarget(srcMod, hit)
			if dstMod == "" {
				continue
			}
			dstID := ir.CanonicalId{Language: ir.LangPython, CodeRoot: codeRoot, FQName: dstMod}

			// Dependency node may be external, so no path or loc.
			nodes = append(nodes, ir.IRNode{
				ID:   dstID,
				Kind: ir.KindModule,
				Name: lastSegment(dstMod),
			})
			edges = append(edges, ir.IREdge{
				Src:     srcID,
				Dst:     dstID,
				DepType: ir.DepImport,
				Loc: &ir.SourceLoc{
					File:  rel,
					Start: ir.SourcePos{Line: hit.line, Column: hit.column},
				},
				Confidence: 1.0,
				Details: map[string]any{
					"kind":   hit.kind,
					"module": hit.module,
					"name":   hit.name,
					"level":  hit.level,
				},
			})
		}
		tree.Close()
	}

	nodes = ir.DedupeNodes(nodes)
	edges = ir.DedupeEdges(edges, ir.EdgeKeyOptions{})
	if cfg.Deterministic {
		sort.Slice(nodes, func(i, j int) bool {
			return ir.NodeKey(nodes[i]) < ir.NodeKey(nodes[j])
		})
		sort.Slice(edges, func(i, j int) bool {
			return ir.EdgeKey(edges[i], ir.EdgeKeyOptions{}) < ir.EdgeKey(edges[j], ir.EdgeKeyOptions{})
		})
	}

	return ir.ArchitectureIR{
		SchemaVersion: ir.SchemaVersion,
		ProducedBy:    fmt.Sprintf("%s@%s", PluginID, pluginVersion),
		RepoRoot:      root,
		Nodes:         nodes,
		Edges:         edges,
		Metadata: map[string]any{
			"language":      string(ir.LangPython),
			"files_scanned": len(files),
			"exclude_globs": append([]string{}, excludes...),
		},
	}, nil
}

func baseName(path string) string {
	path = strings.TrimRight(strings.ReplaceAll(path, "\\", "/"), "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func lastSegment(mod string) string {
	if i := strings.LastIndex(mod, "."); i >= 0 {
		return mod[i+1:]
	}
	return mod
}
