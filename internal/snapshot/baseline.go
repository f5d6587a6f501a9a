package snapshot

import (
	"archlint/internal/report"
	"archlint/internal/rules"
)

// BaselineService classifies current violations against a baseline
// snapshot and produces the summary counters.
//
// Keys come from the same canonical strategy rule evaluation uses, so a
// baseline written by one run always matches the next.
type BaselineService struct {
	comparer *rules.BaselineComparer
}

// NewBaselineService creates a BaselineService
func NewBaselineService() *BaselineService {
	return &BaselineService{comparer: rules.NewBaselineComparer()}
}

// MarkStatus classifies current violations against the baseline snapshot.
// A nil baseline marks everything unknown. Fixed violations are re-emitted
// from the baseline's stored objects, so reports and history see them;
// they never block and are excluded from violation totals downstream.
func (b *BaselineService) MarkStatus(current []report.Violation, baseline *Snapshot) ([]report.Violation, BaselineCounts) {
	if baseline == nil {
		out := make([]report.Violation, len(current))
		for i, v := range current {
			v.Status = report.StatusUnknown
			out[i] = v
		}
		return out, BaselineCounts{Unknown: len(current)}
	}

	result := b.comparer.Compare(current, baseline.Violations)
	return result.Classified(), BaselineCounts{
		New:      len(result.New),
		Existing: len(result.Existing),
		Fixed:    len(result.Fixed),
	}
}
