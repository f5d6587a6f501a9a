package rules

import (
	"testing"

	"archlint/internal/report"
)

func depViolation(ruleID, srcID, dstID, message string) report.Violation {
	return report.Violation{
		Rule:    report.RuleRef{ID: ruleID, Name: ruleID, Severity: report.SeverityError},
		Message: message,
		Context: map[string]any{
			"target":   "dependency",
			"dep_type": "import",
			"src_id":   srcID,
			"dst_id":   dstID,
		},
	}
}

func TestKeyStableAcrossMessageChanges(t *testing.T) {
	ks := NewKeyStrategy()
	a := ks.KeyFor(depViolation("r1", "s", "d", "original wording"))
	b := ks.KeyFor(depViolation("r1", "s", "d", "completely different wording"))
	if a != b {
		t.Errorf("key changed with message: %s vs %s", a, b)
	}
}

func TestKeyDiffersPerSubject(t *testing.T) {
	ks := NewKeyStrategy()
	a := ks.KeyFor(depViolation("r1", "s", "d1", "m"))
	b := ks.KeyFor(depViolation("r1", "s", "d2", "m"))
	if a == b {
		t.Errorf("different subjects share a key")
	}
	c := ks.KeyFor(depViolation("r2", "s", "d1", "m"))
	if a == c {
		t.Errorf("different rules share a key")
	}
}

func TestKeyNodeTarget(t *testing.T) {
	ks := NewKeyStrategy()
	v := report.Violation{
		Rule:    report.RuleRef{ID: "r1"},
		Context: map[string]any{"target": "node", "node_id": "python://repo::a"},
	}
	same := report.Violation{
		Rule:    report.RuleRef{ID: "r1"},
		Message: "other",
		Context: map[string]any{"target": "node", "node_id": "python://repo::a", "path": "a.py"},
	}
	if ks.KeyFor(v) != ks.KeyFor(same) {
		t.Errorf("volatile context entered the node key")
	}
}

func TestBaselineClassification(t *testing.T) {
	a := depViolation("r1", "s", "a", "m")
	b := depViolation("r1", "s", "b", "m")
	c := depViolation("r1", "s", "c", "m")

	result := NewBaselineComparer().Compare(
		[]report.Violation{b, c}, // current
		[]report.Violation{a, b}, // baseline
	)

	if len(result.New) != 1 || result.New[0].Context["dst_id"] != "c" {
		t.Errorf("New = %v, want [c]", result.New)
	}
	if len(result.Existing) != 1 || result.Existing[0].Context["dst_id"] != "b" {
		t.Errorf("Existing = %v, want [b]", result.Existing)
	}
	if len(result.Fixed) != 1 || result.Fixed[0].Context["dst_id"] != "a" {
		t.Errorf("Fixed = %v, want [a]", result.Fixed)
	}

	for _, v := range result.New {
		if v.Status != report.StatusNew {
			t.Errorf("new status = %s", v.Status)
		}
	}
	for _, v := range result.Existing {
		if v.Status != report.StatusExisting {
			t.Errorf("existing status = %s", v.Status)
		}
	}
	for _, v := range result.Fixed {
		if v.Status != report.StatusFixed {
			t.Errorf("fixed status = %s", v.Status)
		}
	}
}

func TestBaselineUsesPrecomputedKeys(t *testing.T) {
	cur := depViolation("r1", "s", "a", "m")
	cur.Key = "precomputed"
	base := depViolation("r1", "s", "zzz", "m")
	base.Key = "precomputed"

	result := NewBaselineComparer().Compare(
		[]report.Violation{cur},
		[]report.Violation{base},
	)
	if len(result.Existing) != 1 || len(result.New) != 0 {
		t.Errorf("precomputed keys ignored: %+v", result)
	}
}
