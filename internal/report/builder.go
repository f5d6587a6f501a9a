package report

import (
	"sort"
)

var severityWeight = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
	SeverityInfo:    2,
}

// SortViolations orders violations deterministically: severity first
// (error, warning, info), then rule id, then location, then stable key
func SortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		wa, wb := severityWeight[a.Rule.Severity], severityWeight[b.Rule.Severity]
		if wa != wb {
			return wa < wb
		}
		if a.Rule.ID != b.Rule.ID {
			return a.Rule.ID < b.Rule.ID
		}
		af, al, ac := locKey(a.Location)
		bf, bl, bc := locKey(b.Location)
		if af != bf {
			return af < bf
		}
		if al != bl {
			return al < bl
		}
		if ac != bc {
			return ac < bc
		}
		return a.Key < b.Key
	})
}

func locKey(loc *Location) (string, int, int) {
	if loc == nil {
		return "", 0, 0
	}
	return loc.File, loc.Line, loc.Column
}

// Summarize computes aggregate counts for a set of violations and errors.
// Fixed violations are counted under by_status but excluded from the total.
func Summarize(violations []Violation, errors []EngineError) Summary {
	s := Summary{
		BySeverity: map[string]int{},
		ByStatus:   map[string]int{},
		ByRule:     map[string]int{},
	}
	for _, v := range violations {
		s.ByStatus[string(v.Status)]++
		if v.Status == StatusFixed {
			continue
		}
		s.TotalViolations++
		s.BySeverity[string(v.Rule.Severity)]++
		s.ByRule[v.Rule.ID]++
	}
	s.EngineErrors = len(errors)
	return s
}

// Build assembles a complete report: violations sorted deterministically,
// summary computed, nil slices normalized to empty.
func Build(run RunInfo, violations []Violation, errors []EngineError) *Report {
	if violations == nil {
		violations = []Violation{}
	}
	if errors == nil {
		errors = []EngineError{}
	}
	SortViolations(violations)
	return &Report{
		Tool:         "archlint",
		Version:      run.ToolVersion,
		Run:          run,
		Summary:      Summarize(violations, errors),
		Violations:   violations,
		EngineErrors: errors,
	}
}
