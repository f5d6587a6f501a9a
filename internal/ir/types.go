// Package ir defines the language-agnostic intermediate representation of a
// codebase's architecture: nodes (code artifacts), edges (dependencies), and
// the ArchitectureIR graph that analyzers produce, rules evaluate, snapshots
// store, and diffs compare.
package ir

import (
	"fmt"
	"strings"
)

// Language identifies the source language of a code artifact
type Language string

const (
	// LangPython for Python sources
	LangPython Language = "python"
	// LangJava for Java sources
	LangJava Language = "java"
	// LangTypeScript for TypeScript sources
	LangTypeScript Language = "typescript"
	// LangJavaScript for JavaScript sources
	LangJavaScript Language = "javascript"
	// LangGo for Go sources
	LangGo Language = "go"
	// LangUnknown for artifacts whose language could not be determined
	LangUnknown Language = "unknown"
)

// SymbolKind classifies what kind of code artifact a node represents
type SymbolKind string

const (
	KindRepo      SymbolKind = "repo"
	KindContainer SymbolKind = "container"
	KindFile      SymbolKind = "file"
	KindPackage   SymbolKind = "package"
	KindModule    SymbolKind = "module"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindVariable  SymbolKind = "variable"
)

// DepType classifies the kind of dependency an edge represents
type DepType string

const (
	DepImport  DepType = "import"
	DepRequire DepType = "require"
	DepInclude DepType = "include"
	DepTypeRef DepType = "type_ref"
	DepCall    DepType = "call"

	// Higher-level dependency kinds produced by optional extractors
	DepHTTPCall     DepType = "http_call"
	DepEventPublish DepType = "event_publish"
	DepEventConsume DepType = "event_consume"
	DepDBQuery      DepType = "db_query"
)

// SourcePos is a 1-based position in a source file
type SourcePos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceLoc is a location (span) in a source file
type SourceLoc struct {
	File  string     `json:"file"`
	Start SourcePos  `json:"start"`
	End   *SourcePos `json:"end,omitempty"`
}

// CanonicalId is the stable, cross-language identifier of a graph node.
//
// String form:
//
//	{language}://{code_root}::{fqname}
//
// Example:
//
//	python://billing-service::services.billing.domain.invoice
//
// The string form is the sole node identity. It is never recomputed from
// enrichment fields.
type CanonicalId struct {
	Language Language `json:"language"`
	CodeRoot string   `json:"code_root"`
	FQName   string   `json:"fqname"`
}

// String returns the canonical string form used as identity everywhere
func (c CanonicalId) String() string {
	return fmt.Sprintf("%s://%s::%s", c.Language, c.CodeRoot, c.FQName)
}

// IsZero reports whether the id has no components set
func (c CanonicalId) IsZero() bool {
	return c.Language == "" && c.CodeRoot == "" && c.FQName == ""
}

// IsValid reports whether the id can serve as a node identity: both the
// code root and the fqname must be non-blank. The string form is never
// empty, so components are checked individually.
func (c CanonicalId) IsValid() bool {
	return strings.TrimSpace(c.CodeRoot) != "" && strings.TrimSpace(c.FQName) != ""
}

// IRNode represents a code artifact (file/module/class/...).
//
// Identity is the canonical id only. The container/layer/context/service/
// container-kind/within fields are a mutable enrichment overlay written by
// the enricher; they are never part of identity.
type IRNode struct {
	ID   CanonicalId `json:"id"`
	Kind SymbolKind  `json:"kind"`

	// Best-effort metadata
	Name string     `json:"name,omitempty"`
	Path string     `json:"path,omitempty"`
	Loc  *SourceLoc `json:"loc,omitempty"`

	// Enrichment overlay, written by the mapping layer
	Container     string `json:"container,omitempty"`
	Layer         string `json:"layer,omitempty"`
	Context       string `json:"context,omitempty"`
	Service       string `json:"service,omitempty"`
	ContainerKind string `json:"container_kind,omitempty"`
	Within        string `json:"within,omitempty"`

	Tags       []string       `json:"tags,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// IREdge is a directed dependency between two nodes.
//
// Default identity is (src, dst, dep_type); location and details are excluded
// from identity unless explicitly requested (see EdgeKey). The src_*/dst_*
// fields mirror the enrichment of the endpoint nodes.
type IREdge struct {
	Src     CanonicalId `json:"src"`
	Dst     CanonicalId `json:"dst"`
	DepType DepType     `json:"dep_type"`

	Loc        *SourceLoc     `json:"loc,omitempty"`
	Confidence float64        `json:"confidence"`
	Details    map[string]any `json:"details,omitempty"`

	SrcContainer     string `json:"src_container,omitempty"`
	SrcLayer         string `json:"src_layer,omitempty"`
	SrcContext       string `json:"src_context,omitempty"`
	SrcService       string `json:"src_service,omitempty"`
	SrcContainerKind string `json:"src_container_kind,omitempty"`
	SrcWithin        string `json:"src_within,omitempty"`

	DstContainer     string `json:"dst_container,omitempty"`
	DstLayer         string `json:"dst_layer,omitempty"`
	DstContext       string `json:"dst_context,omitempty"`
	DstService       string `json:"dst_service,omitempty"`
	DstContainerKind string `json:"dst_container_kind,omitempty"`
	DstWithin        string `json:"dst_within,omitempty"`
}

// SchemaVersion is the current ArchitectureIR schema version
const SchemaVersion = 1

// ArchitectureIR is a whole dependency graph.
//
// This is the only structure that analyzers produce, rules evaluate,
// snapshots store, and diffs compare. Every pipeline stage returns a fresh
// value; nothing mutates a graph in place.
type ArchitectureIR struct {
	SchemaVersion int    `json:"schema_version"`
	ProducedBy    string `json:"produced_by"`
	RepoRoot      string `json:"repo_root"`

	Nodes []IRNode `json:"nodes"`
	Edges []IREdge `json:"edges"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Empty returns an empty graph rooted at repoRoot
func Empty(repoRoot string) ArchitectureIR {
	return ArchitectureIR{
		SchemaVersion: SchemaVersion,
		ProducedBy:    "archlint-core",
		RepoRoot:      repoRoot,
	}
}
