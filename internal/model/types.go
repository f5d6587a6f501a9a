// Package model holds the declarative architecture description: bounded
// contexts, containers with code mappings, layers, and relations. The model
// is loaded from architecture.yaml, validated structurally, used for graph
// enrichment, and never mutated during analysis.
package model

import (
	"fmt"
	"strings"
)

// Context represents a bounded context (DDD)
type Context struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Layer represents an architectural layer inside a container
type Layer struct {
	ID          string   `json:"id"`
	Patterns    []string `json:"patterns"`
	Description string   `json:"description,omitempty"`
}

// CodeMapping defines how code paths map to a container
type CodeMapping struct {
	// Roots are path prefixes owned by the container
	Roots []string `json:"roots"`
	// Layers maps layer id to its definition
	Layers map[string]Layer `json:"layers,omitempty"`
}

// ContainerKind classifies a container
type ContainerKind string

const (
	KindService ContainerKind = "service"
	KindModule  ContainerKind = "module"
	KindLibrary ContainerKind = "library"
)

// ParseContainerKind validates a container kind string
func ParseContainerKind(s string) (ContainerKind, error) {
	switch ContainerKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindService:
		return KindService, nil
	case KindModule:
		return KindModule, nil
	case KindLibrary:
		return KindLibrary, nil
	}
	return "", fmt.Errorf("invalid container kind: %q", s)
}

// Container represents a deployable or logical code unit (C4 level 2).
//
// Containers may nest via Children; the resolver flattens the tree into
// dot-qualified ids ("billing-service.invoice-module"), so after resolution
// Children is always nil and the id encodes the ancestry.
type Container struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Context     string        `json:"context,omitempty"`
	Description string        `json:"description,omitempty"`
	Kind        ContainerKind `json:"kind"`

	Code *CodeMapping `json:"code,omitempty"`
	Tags []string     `json:"tags,omitempty"`

	Children map[string]Container `json:"children,omitempty"`
}

// Relation represents a declared high-level link between two containers
type Relation struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Protocol    string `json:"protocol,omitempty"`
	Description string `json:"description,omitempty"`
}

// ArchitectureModel is the root of the architecture description.
//
// The lookup tables (ContainerToContext, PathRoots, LayerPatterns) are
// computed by the Resolver over the flattened container set; before
// resolution they are nil.
type ArchitectureModel struct {
	Version int `json:"version"`

	Contexts   map[string]Context   `json:"contexts"`
	Containers map[string]Container `json:"containers"`
	Relations  []Relation           `json:"relations,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	ContainerToContext map[string]string            `json:"-"`
	PathRoots          map[string][]string          `json:"-"`
	LayerPatterns      map[string]map[string][]string `json:"-"`
}

// Container returns the container with the given (flattened) id
func (m *ArchitectureModel) Container(id string) (Container, bool) {
	c, ok := m.Containers[id]
	return c, ok
}

// ContextFor returns the context id of a container, empty if none
func (m *ArchitectureModel) ContextFor(containerID string) string {
	return m.ContainerToContext[containerID]
}

// LayerPatternsFor returns the layer-id to pattern-set map of a container
func (m *ArchitectureModel) LayerPatternsFor(containerID string) map[string][]string {
	return m.LayerPatterns[containerID]
}

// TopLevelOf returns the top-level ancestor id of a dot-qualified
// container id; for a top-level container this is the id itself.
func TopLevelOf(containerID string) string {
	if i := strings.IndexByte(containerID, '.'); i >= 0 {
		return containerID[:i]
	}
	return containerID
}

// WithinKindFor returns the declared kind of the container's top-level
// ancestor, empty if the ancestor is unknown.
func (m *ArchitectureModel) WithinKindFor(containerID string) ContainerKind {
	top, ok := m.Containers[TopLevelOf(containerID)]
	if !ok {
		return ""
	}
	return top.Kind
}
