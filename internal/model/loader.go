package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadError is a terminal model-loading failure. The engine converts it
// into a config_error diagnostic; it is never surfaced raw to users.
type LoadError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func loadErr(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Loader loads an ArchitectureModel from architecture.yaml / .yml / .json
type Loader struct{}

// NewLoader creates a Loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a model file. The returned model is unresolved:
// containers are still nested and the lookup tables are nil.
func (l *Loader) Load(path string) (*ArchitectureModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, loadErr("model_not_found", "model file does not exist: %s", path)
		}
		return nil, loadErr("model_unreadable", "cannot read model file %s: %v", path, err)
	}

	var data any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, loadErr("invalid_model", "invalid JSON in %s: %v", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, loadErr("invalid_model", "invalid YAML in %s: %v", path, err)
		}
	default:
		// unknown extension: try JSON, then YAML
		if err := json.Unmarshal(raw, &data); err != nil {
			if yerr := yaml.Unmarshal(raw, &data); yerr != nil {
				return nil, loadErr("unsupported_extension", "unsupported model file extension: %s", filepath.Ext(path))
			}
		}
	}

	root, ok := asMap(data)
	if !ok {
		return nil, loadErr("invalid_model", "architecture model root must be a mapping")
	}
	return Parse(root)
}

// Parse builds an unresolved model from a generic key/value tree
func Parse(root map[string]any) (*ArchitectureModel, error) {
	version := 1
	if v, ok := root["version"]; ok {
		n, ok := asInt(v)
		if !ok {
			return nil, loadErr("invalid_version", "'version' must be an integer")
		}
		version = n
	}

	metadata := map[string]any{}
	if system, ok := asMap(root["system"]); ok {
		metadata["system"] = system
	}
	if meta, ok := asMap(root["metadata"]); ok {
		for k, v := range meta {
			metadata[k] = v
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	contexts, err := parseContexts(root["contexts"])
	if err != nil {
		return nil, err
	}
	containers, err := parseContainers(root["containers"], false)
	if err != nil {
		return nil, err
	}

	rawRelations := root["relations"]
	if rawRelations == nil {
		rawRelations = root["communication"]
	}
	relations, err := parseRelations(rawRelations)
	if err != nil {
		return nil, err
	}

	return &ArchitectureModel{
		Version:    version,
		Contexts:   contexts,
		Containers: containers,
		Relations:  relations,
		Metadata:   metadata,
	}, nil
}

func parseContexts(raw any) (map[string]Context, error) {
	if raw == nil {
		return map[string]Context{}, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, loadErr("invalid_contexts", "'contexts' must be a mapping")
	}

	out := make(map[string]Context, len(m))
	for id, spec := range m {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if spec == nil {
			out[id] = Context{ID: id}
			continue
		}
		sm, ok := asMap(spec)
		if !ok {
			return nil, loadErr("invalid_context", "context %q must be an object", id)
		}
		out[id] = Context{
			ID:          id,
			Name:        asStringOr(sm["name"], ""),
			Description: asStringOr(sm["description"], ""),
		}
	}
	return out, nil
}

func parseContainers(raw any, nested bool) (map[string]Container, error) {
	if raw == nil {
		return map[string]Container{}, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, loadErr("invalid_containers", "'containers' must be a mapping")
	}

	out := make(map[string]Container, len(m))
	for id, spec := range m {
		if strings.TrimSpace(id) == "" {
			continue
		}
		sm, ok := asMap(spec)
		if !ok {
			return nil, loadErr("invalid_container", "container %q must be an object", id)
		}

		code, err := parseCodeMapping(id, sm["code"])
		if err != nil {
			return nil, err
		}

		kind := defaultKind(nested)
		if rawKind := asStringOr(sm["kind"], ""); rawKind != "" {
			kind, err = ParseContainerKind(rawKind)
			if err != nil {
				return nil, loadErr("invalid_container_kind", "container %q: %v", id, err)
			}
		}

		childrenRaw := sm["children"]
		if childrenRaw == nil {
			childrenRaw = sm["contains"]
		}
		children, err := parseContainers(childrenRaw, true)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			children = nil
		}

		out[id] = Container{
			ID:          id,
			Name:        asStringOr(sm["name"], ""),
			Context:     asStringOr(sm["context"], ""),
			Description: asStringOr(sm["description"], ""),
			Kind:        kind,
			Code:        code,
			Tags:        asStrings(sm["tags"]),
			Children:    children,
		}
	}
	return out, nil
}

// defaultKind is applied when a container declares no kind: top-level
// containers default to service, nested ones to module.
func defaultKind(nested bool) ContainerKind {
	if nested {
		return KindModule
	}
	return KindService
}

func parseCodeMapping(containerID string, raw any) (*CodeMapping, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, loadErr("invalid_code_mapping", "container %q: 'code' must be an object", containerID)
	}

	roots := asStrings(m["roots"])
	layers, err := parseLayers(containerID, m["layers"])
	if err != nil {
		return nil, err
	}
	return &CodeMapping{Roots: roots, Layers: layers}, nil
}

func parseLayers(containerID string, raw any) (map[string]Layer, error) {
	if raw == nil {
		return map[string]Layer{}, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, loadErr("invalid_layers", "container %q: 'layers' must be a mapping", containerID)
	}

	out := make(map[string]Layer, len(m))
	for id, spec := range m {
		if strings.TrimSpace(id) == "" {
			continue
		}

		// A layer is either a bare pattern list or an object
		switch spec.(type) {
		case nil, []any, []string, string:
			out[id] = Layer{ID: id, Patterns: asStrings(spec)}
			continue
		}
		sm, ok := asMap(spec)
		if !ok {
			return nil, loadErr("invalid_layer_spec", "layer %q in container %q must be a pattern list or an object", id, containerID)
		}
		pats := sm["patterns"]
		if pats == nil {
			pats = sm["globs"]
		}
		if pats == nil {
			pats = sm["paths"]
		}
		out[id] = Layer{
			ID:          id,
			Patterns:    asStrings(pats),
			Description: asStringOr(sm["description"], ""),
		}
	}
	return out, nil
}

func parseRelations(raw any) ([]Relation, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, loadErr("invalid_relations", "'relations' must be a list when present")
	}

	var rels []Relation
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		from := asStringOr(m["from_container"], asStringOr(m["from"], ""))
		to := asStringOr(m["to_container"], asStringOr(m["to"], ""))
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			continue
		}
		rels = append(rels, Relation{
			From:        from,
			To:          to,
			Protocol:    asStringOr(m["protocol"], ""),
			Description: asStringOr(m["description"], ""),
		})
	}
	return rels, nil
}

// generic-tree accessors; YAML and JSON decode to different map/number
// shapes and these absorb the difference

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asStringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func asStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{strings.TrimSpace(val)}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				s = fmt.Sprintf("%v", item)
			}
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
