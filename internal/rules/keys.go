package rules

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"

	"archlint/internal/report"
)

// KeyStrategy builds stable violation keys so baselines can match the
// same violation across runs and commits.
//
// The key is a hash of a canonical JSON payload of (rule id, target,
// subject identity) only. Message text and volatile context never enter
// the key, so rewording a rule does not reset its baseline. This single
// strategy is used everywhere: evaluation, baseline comparison, and the
// snapshot store.
type KeyStrategy struct{}

// NewKeyStrategy creates a KeyStrategy
func NewKeyStrategy() *KeyStrategy {
	return &KeyStrategy{}
}

// KeyFor computes the stable key of a violation
func (s *KeyStrategy) KeyFor(v report.Violation) string {
	ctx := v.Context
	target, _ := ctx["target"].(string)

	var payload map[string]any
	switch target {
	case "dependency":
		payload = map[string]any{
			"rule":     v.Rule.ID,
			"target":   "dependency",
			"dep_type": ctx["dep_type"],
			"src_id":   ctx["src_id"],
			"dst_id":   ctx["dst_id"],
		}
	case "node":
		payload = map[string]any{
			"rule":    v.Rule.ID,
			"target":  "node",
			"node_id": ctx["node_id"],
		}
	default:
		payload = map[string]any{
			"rule":   v.Rule.ID,
			"target": target,
			"action": ctx["action"],
		}
	}
	return hashPayload(payload)
}

func hashPayload(payload map[string]any) string {
	// json.Marshal sorts map keys, which makes the serialization canonical
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
