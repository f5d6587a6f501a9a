// Package report defines the engine's outward-facing value types: severities,
// engine errors, violations, run metadata, and the final Report envelope
// consumed by renderers and CI gates.
package report

import (
	"fmt"
	"strings"
)

// Severity is the severity level of an architecture violation
type Severity string

const (
	// SeverityError is build-breaking
	SeverityError Severity = "error"
	// SeverityWarning is visible but non-blocking
	SeverityWarning Severity = "warning"
	// SeverityInfo is informational only
	SeverityInfo Severity = "info"
)

// ParseSeverity parses a severity string, case-insensitive
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("invalid severity: %q", s)
}

// IsBlocking reports whether this severity should fail CI by default
func (s Severity) IsBlocking() bool {
	return s == SeverityError
}

// SeverityOrder lists severities from highest to lowest importance
func SeverityOrder() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityInfo}
}

// Location is a source location, stable for rendering and tooling
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`

	EndLine   int `json:"end_line,omitempty"`
	EndColumn int `json:"end_column,omitempty"`
}

// EngineErrorType classifies internal failures that may affect analysis
// completeness. These are tool errors, not architectural violations.
type EngineErrorType string

const (
	// ErrConfig covers bad model/rule-file content and missing baselines
	ErrConfig EngineErrorType = "config_error"
	// ErrParse covers malformed rule-document syntax
	ErrParse EngineErrorType = "parse_error"
	// ErrRules covers unknown predicate fields and invalid severity/action/target
	ErrRules EngineErrorType = "rules_error"
	// ErrAnalyzer covers graph-producer failures
	ErrAnalyzer EngineErrorType = "analyzer_error"
	// ErrRuntime covers unexpected stage failures
	ErrRuntime EngineErrorType = "runtime_error"
)

// EngineError is a structured diagnostic recorded by a pipeline stage.
// Stages never surface raw errors to callers; they convert them into
// EngineErrors appended to the run's error list.
type EngineError struct {
	Type     EngineErrorType `json:"type"`
	Message  string          `json:"message"`
	Location *Location       `json:"location,omitempty"`
	Details  map[string]any  `json:"details,omitempty"`
}

// ViolationStatus is a violation's state relative to a baseline snapshot
type ViolationStatus string

const (
	StatusNew      ViolationStatus = "new"
	StatusExisting ViolationStatus = "existing"
	StatusFixed    ViolationStatus = "fixed"
	StatusUnknown  ViolationStatus = "unknown"
)

// RuleRef is the minimal rule metadata embedded into a violation
type RuleRef struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// Violation is one concrete rule match against the architecture (or one
// missing match for a require rule).
//
// Key must be stable across runs for baseline support: it is a hash of the
// rule id, target kind, and subject identity only, independent of message
// text and volatile context.
type Violation struct {
	Rule    RuleRef         `json:"rule"`
	Message string          `json:"message"`
	Status  ViolationStatus `json:"status"`

	Location *Location `json:"location,omitempty"`

	// Context carries the subject's identity fields (from/to style for
	// dependency violations).
	Context map[string]any `json:"context,omitempty"`

	// Key is the stable identity used for baselines and diffs
	Key string `json:"violation_key,omitempty"`

	Suggestion string `json:"suggestion,omitempty"`
}

// RunInfo is provenance information for one scan run
type RunInfo struct {
	RepoRoot string `json:"repo_root"`
	Commit   string `json:"commit,omitempty"`
	Branch   string `json:"branch,omitempty"`

	ModelFile  string   `json:"model_file,omitempty"`
	RulesFiles []string `json:"rules_files,omitempty"`

	BaselineRef string `json:"baseline_ref,omitempty"`
	Mode        string `json:"mode,omitempty"`

	RunID       string `json:"run_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	ToolVersion string `json:"tool_version,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Summary aggregates report statistics
type Summary struct {
	TotalViolations int            `json:"total_violations"`
	BySeverity      map[string]int `json:"by_severity"`
	ByStatus        map[string]int `json:"by_status"`
	ByRule          map[string]int `json:"by_rule"`

	EngineErrors int `json:"engine_errors"`
}

// DiffSummary is a high-level structural diff suitable for CLI output
type DiffSummary struct {
	NodesAdded   int `json:"nodes_added"`
	NodesRemoved int `json:"nodes_removed"`
	EdgesAdded   int `json:"edges_added"`
	EdgesRemoved int `json:"edges_removed"`
}

// Report is the final output of the engine, renderable to text or JSON
type Report struct {
	Tool    string  `json:"tool"`
	Version string  `json:"version"`
	Run     RunInfo `json:"run"`

	Summary      Summary       `json:"summary"`
	Violations   []Violation   `json:"violations"`
	EngineErrors []EngineError `json:"engine_errors"`

	Diff *DiffSummary `json:"diff,omitempty"`
}

// HasBlockingFindings reports whether the report contains error-severity
// violations or any engine errors. Exit-code policy itself lives in the CLI.
func (r *Report) HasBlockingFindings() bool {
	if len(r.EngineErrors) > 0 {
		return true
	}
	for _, v := range r.Violations {
		if v.Rule.Severity.IsBlocking() && v.Status != StatusFixed {
			return true
		}
	}
	return false
}
