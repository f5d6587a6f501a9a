package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"archlint/internal/report"
	"archlint/internal/snapshot"
	"archlint/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatText  OutputFormat = "text"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman, FormatText:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *ScanResponseCLI:
		return formatScanHuman(v)
	case *SnapshotListCLI:
		return formatSnapshotListHuman(v)
	case *SnapshotShowCLI:
		return formatSnapshotShowHuman(v)
	case *DiffResponseCLI:
		return formatDiffHuman(v)
	case *HistoryResponseCLI:
		return formatHistoryHuman(v)
	case *RefsResponseCLI:
		return formatRefListHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// ScanResponseCLI wraps a scan report with snapshot bookkeeping for output
type ScanResponseCLI struct {
	Report *report.Report `json:"report"`
	Saved  *SavedCLI      `json:"saved,omitempty"`
}

// SavedCLI describes the snapshot object a scan persisted
type SavedCLI struct {
	Hash string   `json:"hash"`
	Refs []string `json:"refs,omitempty"`
}

// SnapshotListCLI lists stored snapshot objects and the refs pointing at them
type SnapshotListCLI struct {
	Snapshots []SnapshotInfoCLI `json:"snapshots"`
	Refs      map[string]string `json:"refs,omitempty"`
}

// SnapshotInfoCLI summarizes one stored snapshot object
type SnapshotInfoCLI struct {
	Hash       string `json:"hash"`
	CreatedAt  string `json:"created_at,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	Violations int    `json:"violations"`
}

// SnapshotShowCLI carries one resolved snapshot for output
type SnapshotShowCLI struct {
	Ref      string            `json:"ref,omitempty"`
	Hash     string            `json:"hash"`
	Snapshot snapshot.Snapshot `json:"snapshot"`
}

// DiffResponseCLI is the structural diff between two snapshots
type DiffResponseCLI struct {
	Before string        `json:"before"`
	After  string        `json:"after"`
	Diff   snapshot.Diff `json:"diff"`
}

// HistoryResponseCLI lists recorded scan runs
type HistoryResponseCLI struct {
	Runs []storage.RunRecord `json:"runs"`
}

// RefsResponseCLI lists snapshot refs
type RefsResponseCLI struct {
	Refs map[string]string `json:"refs"`
}

func severityIcon(s report.Severity) string {
	switch s {
	case report.SeverityError:
		return "✗"
	case report.SeverityWarning:
		return "⚠"
	default:
		return "·"
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// formatScanHuman formats a ScanResponseCLI in human-readable format
func formatScanHuman(resp *ScanResponseCLI) (string, error) {
	var b strings.Builder
	rep := resp.Report

	b.WriteString(fmt.Sprintf("archlint v%s\n", rep.Version))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Repo: %s\n", rep.Run.RepoRoot))
	if rep.Run.Commit != "" {
		line := fmt.Sprintf("Commit: %s", shortHash(rep.Run.Commit))
		if rep.Run.Branch != "" {
			line += fmt.Sprintf(" (%s)", rep.Run.Branch)
		}
		b.WriteString(line + "\n")
	}
	if rep.Run.BaselineRef != "" {
		b.WriteString(fmt.Sprintf("Baseline: %s\n", rep.Run.BaselineRef))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Violations: %d", rep.Summary.TotalViolations))
	if len(rep.Summary.BySeverity) > 0 {
		parts := make([]string, 0, 3)
		for _, sev := range report.SeverityOrder() {
			if n := rep.Summary.BySeverity[string(sev)]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, sev))
			}
		}
		if len(parts) > 0 {
			b.WriteString(fmt.Sprintf(" (%s)", strings.Join(parts, ", ")))
		}
	}
	b.WriteString("\n")
	if len(rep.Summary.ByStatus) > 0 && rep.Run.BaselineRef != "" {
		b.WriteString(fmt.Sprintf("Against baseline: %d new, %d existing, %d fixed\n",
			rep.Summary.ByStatus[string(report.StatusNew)],
			rep.Summary.ByStatus[string(report.StatusExisting)],
			rep.Summary.ByStatus[string(report.StatusFixed)]))
	}
	b.WriteString("\n")

	for _, v := range rep.Violations {
		marker := ""
		switch v.Status {
		case report.StatusNew:
			marker = " [new]"
		case report.StatusFixed:
			marker = " [fixed]"
		}
		b.WriteString(fmt.Sprintf("%s [%s] %s: %s%s\n",
			severityIcon(v.Rule.Severity), v.Rule.Severity, v.Rule.ID, v.Message, marker))
		if v.Location != nil && v.Location.File != "" {
			b.WriteString(fmt.Sprintf("    at %s:%d\n", v.Location.File, v.Location.Line))
		}
		if v.Suggestion != "" {
			b.WriteString(fmt.Sprintf("    hint: %s\n", v.Suggestion))
		}
	}
	if len(rep.Violations) > 0 {
		b.WriteString("\n")
	}

	if len(rep.EngineErrors) > 0 {
		b.WriteString("Engine errors:\n")
		for _, e := range rep.EngineErrors {
			b.WriteString(fmt.Sprintf("  ! [%s] %s\n", e.Type, e.Message))
			if e.Location != nil && e.Location.File != "" {
				b.WriteString(fmt.Sprintf("      at %s:%d\n", e.Location.File, e.Location.Line))
			}
		}
		b.WriteString("\n")
	}

	if rep.Diff != nil {
		b.WriteString(fmt.Sprintf("Graph drift: +%d/-%d nodes, +%d/-%d edges\n",
			rep.Diff.NodesAdded, rep.Diff.NodesRemoved,
			rep.Diff.EdgesAdded, rep.Diff.EdgesRemoved))
	}

	if resp.Saved != nil {
		b.WriteString(fmt.Sprintf("Snapshot saved: %s", shortHash(resp.Saved.Hash)))
		if len(resp.Saved.Refs) > 0 {
			b.WriteString(fmt.Sprintf(" (refs: %s)", strings.Join(resp.Saved.Refs, ", ")))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// formatSnapshotListHuman formats a SnapshotListCLI in human-readable format
func formatSnapshotListHuman(resp *SnapshotListCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Snapshots: %d\n", len(resp.Snapshots)))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	// Invert refs so each object line can show its names
	refsByHash := make(map[string][]string)
	for ref, hash := range resp.Refs {
		refsByHash[hash] = append(refsByHash[hash], ref)
	}

	for _, s := range resp.Snapshots {
		names := ""
		if refs := refsByHash[s.Hash]; len(refs) > 0 {
			names = fmt.Sprintf(" (%s)", strings.Join(refs, ", "))
		}
		b.WriteString(fmt.Sprintf("%s%s\n", s.Hash, names))
		if s.CreatedAt != "" {
			b.WriteString(fmt.Sprintf("  Created: %s\n", s.CreatedAt))
		}
		if s.Commit != "" {
			b.WriteString(fmt.Sprintf("  Commit: %s\n", shortHash(s.Commit)))
		}
		b.WriteString(fmt.Sprintf("  Nodes: %d, Edges: %d, Violations: %d\n\n",
			s.Nodes, s.Edges, s.Violations))
	}

	return b.String(), nil
}

// formatSnapshotShowHuman formats a SnapshotShowCLI in human-readable format
func formatSnapshotShowHuman(resp *SnapshotShowCLI) (string, error) {
	var b strings.Builder
	snap := resp.Snapshot

	title := resp.Hash
	if resp.Ref != "" {
		title = fmt.Sprintf("%s -> %s", resp.Ref, resp.Hash)
	}
	b.WriteString(fmt.Sprintf("Snapshot %s\n", title))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Repo: %s\n", snap.Meta.RepoRoot))
	if snap.Meta.Commit != "" {
		b.WriteString(fmt.Sprintf("Commit: %s\n", shortHash(snap.Meta.Commit)))
	}
	if snap.Meta.CreatedAt != "" {
		b.WriteString(fmt.Sprintf("Created: %s\n", snap.Meta.CreatedAt))
	}
	if snap.Meta.ToolVersion != "" {
		b.WriteString(fmt.Sprintf("Tool: archlint v%s\n", snap.Meta.ToolVersion))
	}
	b.WriteString(fmt.Sprintf("\nNodes: %d\nEdges: %d\nViolations: %d\n",
		len(snap.Nodes), len(snap.Edges), len(snap.Violations)))

	return b.String(), nil
}

// formatDiffHuman formats a DiffResponseCLI in human-readable format
func formatDiffHuman(resp *DiffResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Diff: %s -> %s\n", resp.Before, resp.After))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.Diff.IsEmpty() {
		b.WriteString("No structural changes.\n")
		return b.String(), nil
	}

	b.WriteString(fmt.Sprintf("Nodes: +%d / -%d\n", resp.Diff.NodesAdded, resp.Diff.NodesRemoved))
	b.WriteString(fmt.Sprintf("Edges: +%d / -%d\n", resp.Diff.EdgesAdded, resp.Diff.EdgesRemoved))

	if d := resp.Diff.Details; d != nil {
		writeKeys := func(label string, keys snapshot.DiffKeys) {
			for _, k := range keys.Added {
				b.WriteString(fmt.Sprintf("  + %s %s\n", label, k))
			}
			for _, k := range keys.Removed {
				b.WriteString(fmt.Sprintf("  - %s %s\n", label, k))
			}
			for _, k := range keys.Changed {
				b.WriteString(fmt.Sprintf("  ~ %s %s\n", label, k))
			}
		}
		b.WriteString("\n")
		writeKeys("node", d.Nodes)
		writeKeys("edge", d.Edges)
	}

	return b.String(), nil
}

// formatHistoryHuman formats a HistoryResponseCLI in human-readable format
func formatHistoryHuman(resp *HistoryResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Runs: %d\n", len(resp.Runs)))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, r := range resp.Runs {
		b.WriteString(fmt.Sprintf("%s  %s\n", r.RunID, r.CreatedAt))
		if r.Commit != "" {
			line := fmt.Sprintf("  Commit: %s", shortHash(r.Commit))
			if r.Branch != "" {
				line += fmt.Sprintf(" (%s)", r.Branch)
			}
			b.WriteString(line + "\n")
		}
		if r.SnapshotHash != "" {
			b.WriteString(fmt.Sprintf("  Snapshot: %s\n", r.SnapshotHash))
		}
		b.WriteString(fmt.Sprintf("  Graph: %d nodes, %d edges\n", r.NodeCount, r.EdgeCount))
		b.WriteString(fmt.Sprintf("  Violations: %d (%d new, %d existing, %d fixed), errors: %d\n",
			r.ViolationCount, r.NewCount, r.ExistingCount, r.FixedCount, r.ErrorCount))
		b.WriteString(fmt.Sprintf("  Duration: %dms\n\n", r.DurationMs))
	}

	return b.String(), nil
}

// formatRefListHuman formats a RefsResponseCLI in human-readable format
func formatRefListHuman(resp *RefsResponseCLI) (string, error) {
	var b strings.Builder

	if len(resp.Refs) == 0 {
		b.WriteString("No refs.\n")
		return b.String(), nil
	}

	names := make([]string, 0, len(resp.Refs))
	for ref := range resp.Refs {
		names = append(names, ref)
	}
	sort.Strings(names)
	for _, ref := range names {
		b.WriteString(fmt.Sprintf("%-20s %s\n", ref, resp.Refs[ref]))
	}

	return b.String(), nil
}
