package snapshot

import (
	"reflect"
	"testing"

	"archlint/internal/ir"
	"archlint/internal/report"
)

func snapID(fq string) ir.CanonicalId {
	return ir.CanonicalId{Language: ir.LangPython, CodeRoot: "repo", FQName: fq}
}

func sampleGraph() ir.ArchitectureIR {
	g := ir.Empty("/repo")
	g.Nodes = []ir.IRNode{
		{ID: snapID("b"), Kind: ir.KindModule, Path: "b.py"},
		{ID: snapID("a"), Kind: ir.KindModule, Path: "a.py"},
	}
	g.Edges = []ir.IREdge{
		{Src: snapID("a"), Dst: snapID("b"), DepType: ir.DepImport, Confidence: 1},
	}
	return g
}

func sampleViolation(dst string) report.Violation {
	return report.Violation{
		Rule:    report.RuleRef{ID: "r1", Severity: report.SeverityError},
		Message: "m",
		Context: map[string]any{
			"target":   "dependency",
			"dep_type": "import",
			"src_id":   "python://repo::a",
			"dst_id":   dst,
		},
	}
}

func TestBuildCanonicalOrder(t *testing.T) {
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	snap := NewBuilder().Build(sampleGraph(), meta, nil)

	if snap.Nodes[0].ID.FQName != "a" || snap.Nodes[1].ID.FQName != "b" {
		t.Errorf("nodes not in canonical order: %v, %v", snap.Nodes[0].ID, snap.Nodes[1].ID)
	}
	if snap.Violations == nil {
		t.Errorf("nil violations not normalized to empty slice")
	}
	if snap.Meta.CreatedAt != "2026-01-01T00:00:00Z" {
		t.Errorf("explicit CreatedAt overwritten: %s", snap.Meta.CreatedAt)
	}
}

func TestBuildFillsCreatedAt(t *testing.T) {
	snap := NewBuilder().Build(sampleGraph(), Meta{RepoRoot: "/repo"}, nil)
	if snap.Meta.CreatedAt == "" {
		t.Errorf("CreatedAt not filled")
	}
}

func TestComputeHashPureFunctionOfContent(t *testing.T) {
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	a := NewBuilder().Build(sampleGraph(), meta, nil)
	b := NewBuilder().Build(sampleGraph(), meta, nil)

	ha, err := ComputeHash(a)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}
	hb, _ := ComputeHash(b)
	if ha != hb {
		t.Errorf("identical snapshots hash differently: %s vs %s", ha, hb)
	}

	c := NewBuilder().Build(sampleGraph(), meta, []report.Violation{sampleViolation("python://repo::b")})
	hc, _ := ComputeHash(c)
	if hc == ha {
		t.Errorf("different content produced the same hash")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStoreAt(t.TempDir())
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z", Commit: "abc123"}
	snap := NewBuilder().Build(sampleGraph(), meta, []report.Violation{sampleViolation("python://repo::b")})

	res, err := store.Save(snap, "latest")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(res.ShortHash) != HashPrefixLength {
		t.Errorf("ShortHash = %q", res.ShortHash)
	}
	if len(res.RefsUpdated) != 1 || res.RefsUpdated[0] != "latest" {
		t.Errorf("RefsUpdated = %v", res.RefsUpdated)
	}

	loaded, err := store.LoadObject(res.ShortHash)
	if err != nil {
		t.Fatalf("LoadObject() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Nodes, snap.Nodes) {
		t.Errorf("nodes did not round-trip")
	}
	if !reflect.DeepEqual(loaded.Edges, snap.Edges) {
		t.Errorf("edges did not round-trip")
	}
	if loaded.Meta.Commit != "abc123" {
		t.Errorf("meta did not round-trip: %+v", loaded.Meta)
	}

	reHash, _ := ComputeHash(loaded)
	if reHash != res.ObjectHash {
		t.Errorf("round-tripped hash = %s, want %s", reHash, res.ObjectHash)
	}
}

func TestStoreSaveUnchangedIsIdempotent(t *testing.T) {
	store := NewStoreAt(t.TempDir())
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	snap := NewBuilder().Build(sampleGraph(), meta, nil)

	first, err := store.Save(snap)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := store.Save(snap)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if first.ObjectHash != second.ObjectHash {
		t.Errorf("unchanged snapshot produced new hash: %s vs %s", first.ObjectHash, second.ObjectHash)
	}
	if len(store.ListObjects()) != 1 {
		t.Errorf("idempotent save created extra objects")
	}
}

func TestStoreRefs(t *testing.T) {
	store := NewStoreAt(t.TempDir())
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	res, err := store.Save(NewBuilder().Build(sampleGraph(), meta, nil), "latest", "baseline")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if got := store.ResolveRef("baseline"); got != res.ShortHash {
		t.Errorf("ResolveRef(baseline) = %q, want %q", got, res.ShortHash)
	}

	byRef, err := store.Load("baseline")
	if err != nil {
		t.Fatalf("Load(baseline) error = %v", err)
	}
	byHash, err := store.Load(res.ObjectHash)
	if err != nil {
		t.Fatalf("Load(full hash) error = %v", err)
	}
	if !reflect.DeepEqual(byRef, byHash) {
		t.Errorf("ref and hash loads disagree")
	}

	refs := store.ListRefs()
	if len(refs) != 2 {
		t.Errorf("ListRefs() = %v, want 2 refs", refs)
	}
	if !store.DeleteRef("baseline") {
		t.Errorf("DeleteRef(baseline) = false")
	}
	if store.DeleteRef("baseline") {
		t.Errorf("deleting a missing ref reported success")
	}
	if _, err := store.Load("baseline"); err == nil {
		t.Errorf("Load(deleted ref) succeeded")
	}
}

func TestDiffSelfIsEmpty(t *testing.T) {
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	snap := NewBuilder().Build(sampleGraph(), meta, nil)

	d := NewDiffEngine().Diff(snap, snap, true)
	if !d.IsEmpty() {
		t.Errorf("self-diff not empty: %+v", d)
	}
	if len(d.Details.Nodes.Changed) != 0 {
		t.Errorf("self-diff reports changes: %v", d.Details.Nodes.Changed)
	}
}

func TestDiffClassification(t *testing.T) {
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	before := NewBuilder().Build(sampleGraph(), meta, nil)

	after := sampleGraph()
	after.Nodes[0].Path = "b_moved.py" // same id, different content
	after.Nodes = append(after.Nodes, ir.IRNode{ID: snapID("c"), Kind: ir.KindModule})
	afterSnap := NewBuilder().Build(after, meta, nil)

	d := NewDiffEngine().Diff(before, afterSnap, true)

	if d.NodesAdded != 1 || d.NodesRemoved != 0 {
		t.Errorf("added/removed = %d/%d, want 1/0", d.NodesAdded, d.NodesRemoved)
	}
	if d.IsEmpty() {
		t.Errorf("diff with additions reported empty")
	}
	if len(d.Details.Nodes.Changed) != 1 || d.Details.Nodes.Changed[0] != "python://repo::b" {
		t.Errorf("Changed = %v, want the moved node", d.Details.Nodes.Changed)
	}
	if len(d.Details.Nodes.Added) != 1 || d.Details.Nodes.Added[0] != "python://repo::c" {
		t.Errorf("Added = %v", d.Details.Nodes.Added)
	}
}

func TestBaselineMarkStatus(t *testing.T) {
	meta := Meta{RepoRoot: "/repo", CreatedAt: "2026-01-01T00:00:00Z"}
	vA := sampleViolation("python://repo::a")
	vB := sampleViolation("python://repo::b")
	vC := sampleViolation("python://repo::c")

	base := NewBuilder().Build(sampleGraph(), meta, []report.Violation{vA, vB})

	marked, counts := NewBaselineService().MarkStatus([]report.Violation{vB, vC}, &base)

	if counts.New != 1 || counts.Existing != 1 || counts.Fixed != 1 || counts.Unknown != 0 {
		t.Errorf("counts = %+v, want new=1 existing=1 fixed=1", counts)
	}
	if len(marked) != 3 {
		t.Fatalf("len(marked) = %d, want 3 (fixed violation re-emitted)", len(marked))
	}
	statusByDst := make(map[string]report.ViolationStatus, len(marked))
	for _, v := range marked {
		statusByDst[v.Context["dst_id"].(string)] = v.Status
	}
	if statusByDst["python://repo::b"] != report.StatusExisting {
		t.Errorf("vB status = %s, want existing", statusByDst["python://repo::b"])
	}
	if statusByDst["python://repo::c"] != report.StatusNew {
		t.Errorf("vC status = %s, want new", statusByDst["python://repo::c"])
	}
	if statusByDst["python://repo::a"] != report.StatusFixed {
		t.Errorf("vA status = %s, want fixed", statusByDst["python://repo::a"])
	}
}

func TestBaselineMissingMarksUnknown(t *testing.T) {
	marked, counts := NewBaselineService().MarkStatus([]report.Violation{sampleViolation("x")}, nil)
	if counts.Unknown != 1 || marked[0].Status != report.StatusUnknown {
		t.Errorf("missing baseline: counts=%+v status=%s", counts, marked[0].Status)
	}
}
