package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(ModelNotFound, "architecture model not found", cause)

	if err.Code != ModelNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ModelNotFound)
	}
	if err.Message != "architecture model not found" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.SuggestedFixes) == 0 {
		t.Errorf("ModelNotFound should carry suggested fixes")
	}
}

func TestLintError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      RulesInvalid,
			message:   "rules document failed to compile",
			cause:     errors.New("unknown field 'flavor'"),
			wantParts: []string{"RULES_INVALID", "rules document failed to compile", "unknown field 'flavor'"},
		},
		{
			name:      "without cause",
			code:      SnapshotNotFound,
			message:   "snapshot 'baseline' not found",
			cause:     nil,
			wantParts: []string{"SNAPSHOT_NOT_FOUND", "snapshot 'baseline' not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.cause)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestLintError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(InternalError, "something went wrong", cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should match the cause")
	}

	errNoCause := New(NoAnalyzer, "no analyzer matched", nil)
	if errNoCause.Unwrap() != nil {
		t.Errorf("Unwrap() on error without cause should return nil")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(GraphInvalid, "graph exceeds limits", nil).
		WithDetails(map[string]int{"nodes": 500000})

	details, ok := err.Details.(map[string]int)
	if !ok || details["nodes"] != 500000 {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestIsCode(t *testing.T) {
	err := New(ConfigInvalid, "bad config", nil)

	if !IsCode(err, ConfigInvalid) {
		t.Errorf("IsCode() = false for matching code")
	}
	if IsCode(err, InternalError) {
		t.Errorf("IsCode() = true for wrong code")
	}
	if IsCode(errors.New("plain"), ConfigInvalid) {
		t.Errorf("IsCode() = true for plain error")
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(SnapshotNotFound); len(fixes) == 0 {
		t.Errorf("SnapshotNotFound should have suggested fixes")
	}
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("InternalError should have no suggested fixes, got %v", fixes)
	}
}
