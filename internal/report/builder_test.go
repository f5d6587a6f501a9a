package report

import "testing"

func TestSortViolations(t *testing.T) {
	vs := []Violation{
		{Rule: RuleRef{ID: "r2", Severity: SeverityWarning}},
		{Rule: RuleRef{ID: "r1", Severity: SeverityError}, Location: &Location{File: "b.py", Line: 5}},
		{Rule: RuleRef{ID: "r1", Severity: SeverityError}, Location: &Location{File: "a.py", Line: 9}},
		{Rule: RuleRef{ID: "r3", Severity: SeverityInfo}},
	}
	SortViolations(vs)

	wantOrder := []string{"r1", "r1", "r2", "r3"}
	for i, want := range wantOrder {
		if vs[i].Rule.ID != want {
			t.Fatalf("vs[%d].Rule.ID = %s, want %s", i, vs[i].Rule.ID, want)
		}
	}
	if vs[0].Location.File != "a.py" {
		t.Errorf("same-rule ordering: first file = %s, want a.py", vs[0].Location.File)
	}
}

func TestSummarizeExcludesFixed(t *testing.T) {
	vs := []Violation{
		{Rule: RuleRef{ID: "r1", Severity: SeverityError}, Status: StatusNew},
		{Rule: RuleRef{ID: "r1", Severity: SeverityError}, Status: StatusFixed},
		{Rule: RuleRef{ID: "r2", Severity: SeverityWarning}, Status: StatusExisting},
	}
	s := Summarize(vs, []EngineError{{Type: ErrRuntime, Message: "boom"}})

	if s.TotalViolations != 2 {
		t.Errorf("TotalViolations = %d, want 2", s.TotalViolations)
	}
	if s.ByStatus["fixed"] != 1 {
		t.Errorf("ByStatus[fixed] = %d, want 1", s.ByStatus["fixed"])
	}
	if s.BySeverity["error"] != 1 {
		t.Errorf("BySeverity[error] = %d, want 1", s.BySeverity["error"])
	}
	if s.EngineErrors != 1 {
		t.Errorf("EngineErrors = %d, want 1", s.EngineErrors)
	}
}

func TestHasBlockingFindings(t *testing.T) {
	r := Build(RunInfo{}, []Violation{
		{Rule: RuleRef{ID: "r1", Severity: SeverityWarning}, Status: StatusNew},
	}, nil)
	if r.HasBlockingFindings() {
		t.Errorf("warnings alone should not block")
	}

	r = Build(RunInfo{}, []Violation{
		{Rule: RuleRef{ID: "r1", Severity: SeverityError}, Status: StatusFixed},
	}, nil)
	if r.HasBlockingFindings() {
		t.Errorf("fixed errors should not block")
	}

	r = Build(RunInfo{}, nil, []EngineError{{Type: ErrConfig, Message: "bad model"}})
	if !r.HasBlockingFindings() {
		t.Errorf("engine errors should block")
	}
}
