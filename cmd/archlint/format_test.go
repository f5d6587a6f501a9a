package main

import (
	"strings"
	"testing"

	"archlint/internal/report"
	"archlint/internal/snapshot"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, `"key": "value"`) {
		t.Error("JSON output missing expected key")
	}
	if !strings.Contains(result, `"num": 42`) {
		t.Error("JSON output missing expected number")
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	resp := map[string]string{"key": "value"}

	_, err := FormatResponse(resp, "xml")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should mention unsupported format, got: %v", err)
	}
}

func sampleScanResponse() *ScanResponseCLI {
	rep := report.Build(report.RunInfo{
		RepoRoot:    "/repo",
		Commit:      "0123456789abcdef0123456789abcdef01234567",
		Branch:      "main",
		BaselineRef: "baseline",
		ToolVersion: "0.1.0",
	}, []report.Violation{
		{
			Rule: report.RuleRef{
				ID:       "no-upward-deps",
				Name:     "No upward deps",
				Severity: report.SeverityError,
			},
			Message:  "domain must not depend on api",
			Status:   report.StatusNew,
			Location: &report.Location{File: "app/domain/svc.py", Line: 3},
		},
	}, []report.EngineError{
		{Type: report.ErrConfig, Message: "Rules file not found: extra.yaml"},
	})

	return &ScanResponseCLI{
		Report: rep,
		Saved:  &SavedCLI{Hash: "a1b2c3d4", Refs: []string{"latest"}},
	}
}

func TestFormatScanHuman(t *testing.T) {
	out, err := FormatResponse(sampleScanResponse(), FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"archlint v0.1.0",
		"Commit: 0123456789ab (main)",
		"Violations: 1 (1 error)",
		"no-upward-deps: domain must not depend on api [new]",
		"at app/domain/svc.py:3",
		"Rules file not found: extra.yaml",
		"Snapshot saved: a1b2c3d4 (refs: latest)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("human output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatScanTextAlias(t *testing.T) {
	out, err := FormatResponse(sampleScanResponse(), FormatText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "archlint v0.1.0") {
		t.Errorf("text output should render like human output, got:\n%s", out)
	}
}

func TestFormatDiffHuman(t *testing.T) {
	resp := &DiffResponseCLI{
		Before: "baseline",
		After:  "latest",
		Diff: snapshot.Diff{
			NodesAdded: 2,
			EdgesAdded: 1,
			Details: &snapshot.DiffDetails{
				Nodes: snapshot.DiffKeys{
					Added:   []string{"python://repo::app.api"},
					Removed: []string{},
					Changed: []string{},
				},
			},
		},
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Nodes: +2 / -0") {
		t.Errorf("diff output missing node counts:\n%s", out)
	}
	if !strings.Contains(out, "+ node python://repo::app.api") {
		t.Errorf("diff output missing added node key:\n%s", out)
	}
}

func TestFormatDiffHumanEmpty(t *testing.T) {
	resp := &DiffResponseCLI{Before: "a", After: "b"}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No structural changes.") {
		t.Errorf("empty diff should say so, got:\n%s", out)
	}
}

func TestFormatRefListHuman(t *testing.T) {
	resp := &RefsResponseCLI{Refs: map[string]string{
		"latest":   "a1b2c3d4",
		"baseline": "e5f6a7b8",
	}}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	baselineIdx := strings.Index(out, "baseline")
	latestIdx := strings.Index(out, "latest")
	if baselineIdx < 0 || latestIdx < 0 {
		t.Fatalf("ref listing missing entries:\n%s", out)
	}
	if baselineIdx > latestIdx {
		t.Errorf("refs should be sorted by name:\n%s", out)
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortHash() = %q, want %q", got, "0123456789ab")
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("shortHash() = %q, want %q", got, "abc")
	}
}
