package model

import (
	"fmt"
	"strings"

	"archlint/internal/report"
)

// Validator performs structural validation of a resolved model.
//
// Findings are advisory engine errors, never fatal; the engine proceeds
// even with a broken model so a run still produces a report.
type Validator struct{}

// NewValidator creates a Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the model and returns its problems as config errors
func (v *Validator) Validate(m *ArchitectureModel) []report.EngineError {
	var errs []report.EngineError

	add := func(msg string, details map[string]any) {
		errs = append(errs, report.EngineError{
			Type:    report.ErrConfig,
			Message: msg,
			Details: details,
		})
	}

	if m.Version <= 0 {
		add("model 'version' must be a positive integer", map[string]any{"version": m.Version})
	}

	for id := range m.Contexts {
		if strings.TrimSpace(id) == "" || strings.TrimSpace(id) != id {
			add("context id must be a non-empty trimmed string", map[string]any{"context_id": id})
		}
	}

	for id, c := range m.Containers {
		v.validateContainer(m, id, c, add)
	}

	for _, r := range m.Relations {
		if _, ok := m.Containers[r.From]; !ok {
			add(fmt.Sprintf("relation references unknown container %q in 'from'", r.From), map[string]any{
				"from": r.From,
				"to":   r.To,
			})
		}
		if _, ok := m.Containers[r.To]; !ok {
			add(fmt.Sprintf("relation references unknown container %q in 'to'", r.To), map[string]any{
				"from": r.From,
				"to":   r.To,
			})
		}
	}

	return errs
}

func (v *Validator) validateContainer(m *ArchitectureModel, id string, c Container, add func(string, map[string]any)) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(id) != id {
		add("container id must be a non-empty trimmed string", map[string]any{"container_id": id})
	}

	switch c.Kind {
	case KindService, KindModule, KindLibrary:
	default:
		add(fmt.Sprintf("container %q has invalid kind %q", id, c.Kind), map[string]any{
			"container_id": id,
			"kind":         string(c.Kind),
		})
	}

	if c.Context != "" {
		if _, ok := m.Contexts[c.Context]; !ok {
			add(fmt.Sprintf("container %q references unknown context %q", id, c.Context), map[string]any{
				"container_id": id,
				"context":      c.Context,
			})
		}
	}

	if c.Code == nil {
		return
	}

	if len(c.Code.Roots) == 0 {
		add(fmt.Sprintf("container %q has code mapping with no roots", id), map[string]any{
			"container_id": id,
		})
	}
	for _, root := range c.Code.Roots {
		if strings.TrimSpace(root) == "" {
			add(fmt.Sprintf("container %q has an empty code root", id), map[string]any{
				"container_id": id,
			})
		}
	}

	for lid, layer := range c.Code.Layers {
		if len(layer.Patterns) == 0 {
			add(fmt.Sprintf("layer %q in container %q has no patterns", lid, id), map[string]any{
				"container_id": id,
				"layer_id":     lid,
			})
			continue
		}
		for _, p := range layer.Patterns {
			if strings.TrimSpace(p) == "" {
				add(fmt.Sprintf("layer %q in container %q has an empty pattern", lid, id), map[string]any{
					"container_id": id,
					"layer_id":     lid,
				})
			}
		}
	}
}
