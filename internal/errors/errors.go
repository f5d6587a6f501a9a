package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates the workspace configuration cannot be used
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ModelNotFound indicates the architecture model file is missing
	ModelNotFound ErrorCode = "MODEL_NOT_FOUND"
	// ModelInvalid indicates the architecture model cannot be parsed
	ModelInvalid ErrorCode = "MODEL_INVALID"
	// RulesNotFound indicates no rule documents matched the configured paths
	RulesNotFound ErrorCode = "RULES_NOT_FOUND"
	// RulesInvalid indicates a rule document cannot be parsed or compiled
	RulesInvalid ErrorCode = "RULES_INVALID"
	// NoAnalyzer indicates no registered analyzer matched the repository
	NoAnalyzer ErrorCode = "NO_ANALYZER"
	// AnalyzerFailed indicates every matching analyzer failed
	AnalyzerFailed ErrorCode = "ANALYZER_FAILED"
	// GraphInvalid indicates the merged dependency graph failed hard limits
	GraphInvalid ErrorCode = "GRAPH_INVALID"
	// SnapshotNotFound indicates a snapshot ref or hash does not resolve
	SnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	// SnapshotCorrupt indicates a stored snapshot cannot be read back
	SnapshotCorrupt ErrorCode = "SNAPSHOT_CORRUPT"
	// StorageUnavailable indicates the run-history database cannot be opened
	StorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// LintError represents a tool error with a stable code and suggestions
type LintError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a LintError with the suggested fixes registered for its code
func New(code ErrorCode, message string, cause error) *LintError {
	return &LintError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *LintError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LintError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LintError) WithDetails(details interface{}) *LintError {
	e.Details = details
	return e
}

// IsCode reports whether err is a LintError with the given code
func IsCode(err error, code ErrorCode) bool {
	le, ok := err.(*LintError)
	return ok && le.Code == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ModelNotFound: {
		{
			Type:        RunCommand,
			Command:     "archlint init",
			Safe:        true,
			Description: "Create a starter .archlint/model.yaml",
		},
	},
	RulesNotFound: {
		{
			Type:        RunCommand,
			Command:     "archlint init",
			Safe:        true,
			Description: "Create a starter .archlint/rules.yaml",
		},
	},
	SnapshotNotFound: {
		{
			Type:        RunCommand,
			Command:     "archlint snapshot list",
			Safe:        true,
			Description: "List stored snapshots and refs",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "archlint check --no-baseline",
			Safe:        true,
			Description: "Run without baseline comparison to inspect config problems",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
