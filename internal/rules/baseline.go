package rules

import (
	"sort"

	"archlint/internal/report"
)

// BaselineResult buckets current violations against a baseline set:
// new (present now only), existing (present in both), fixed (present in
// the baseline only, kept for reporting).
type BaselineResult struct {
	New      []report.Violation
	Existing []report.Violation
	Fixed    []report.Violation
}

// BaselineComparer classifies violations against a baseline by stable
// key. It is a pure set operation over keys; rules are never re-run.
type BaselineComparer struct {
	keys *KeyStrategy
}

// NewBaselineComparer creates a BaselineComparer
func NewBaselineComparer() *BaselineComparer {
	return &BaselineComparer{keys: NewKeyStrategy()}
}

// Compare buckets current against baseline and returns violations in
// key order, with their Status field set.
func (c *BaselineComparer) Compare(current, baseline []report.Violation) BaselineResult {
	curByKey := c.byKey(current)
	baseByKey := c.byKey(baseline)

	var result BaselineResult
	for _, k := range sortedKeys(curByKey) {
		v := curByKey[k]
		if _, ok := baseByKey[k]; ok {
			v.Status = report.StatusExisting
			result.Existing = append(result.Existing, v)
		} else {
			v.Status = report.StatusNew
			result.New = append(result.New, v)
		}
	}
	for _, k := range sortedKeys(baseByKey) {
		if _, ok := curByKey[k]; !ok {
			v := baseByKey[k]
			v.Status = report.StatusFixed
			result.Fixed = append(result.Fixed, v)
		}
	}
	return result
}

// Classified returns all classified violations in one slice, new and
// existing first followed by fixed.
func (r BaselineResult) Classified() []report.Violation {
	out := make([]report.Violation, 0, len(r.New)+len(r.Existing)+len(r.Fixed))
	out = append(out, r.New...)
	out = append(out, r.Existing...)
	out = append(out, r.Fixed...)
	return out
}

func (c *BaselineComparer) byKey(violations []report.Violation) map[string]report.Violation {
	out := make(map[string]report.Violation, len(violations))
	for _, v := range violations {
		key := v.Key
		if key == "" {
			key = c.keys.KeyFor(v)
		}
		out[key] = v
	}
	return out
}

func sortedKeys(m map[string]report.Violation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
