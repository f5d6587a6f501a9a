package ir

import (
	"errors"
	"reflect"
	"testing"
)

func mergeID(fq string) CanonicalId {
	return CanonicalId{Language: LangPython, CodeRoot: "repo", FQName: fq}
}

func TestMergeNoInputs(t *testing.T) {
	_, err := NewMerger().Merge(nil)
	if !errors.Is(err, ErrNoInputs) {
		t.Errorf("Merge(nil) error = %v, want ErrNoInputs", err)
	}
}

func TestMergeRicherNodeWins(t *testing.T) {
	sparse := Empty("/repo")
	sparse.ProducedBy = "pyimports"
	sparse.Nodes = []IRNode{{ID: mergeID("a"), Kind: KindModule}}

	rich := Empty("/repo")
	rich.ProducedBy = "httpcalls"
	rich.Nodes = []IRNode{{ID: mergeID("a"), Kind: KindModule, Path: "a.py", Name: "a"}}

	got, err := NewMerger().Merge([]ArchitectureIR{sparse, rich})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(got.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(got.Nodes))
	}
	if got.Nodes[0].Path != "a.py" {
		t.Errorf("merged node path = %q, want a.py (richer duplicate)", got.Nodes[0].Path)
	}
}

func TestMergeTieKeepsEarlier(t *testing.T) {
	first := Empty("/repo")
	first.Nodes = []IRNode{{ID: mergeID("a"), Kind: KindModule, Name: "first"}}

	second := Empty("/repo")
	second.Nodes = []IRNode{{ID: mergeID("a"), Kind: KindModule, Name: "second"}}

	got, err := NewMerger().Merge([]ArchitectureIR{first, second})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got.Nodes[0].Name != "first" {
		t.Errorf("tie-break kept %q, want first", got.Nodes[0].Name)
	}
}

func TestMergeEdgeConfidenceWins(t *testing.T) {
	low := Empty("/repo")
	low.Edges = []IREdge{{Src: mergeID("a"), Dst: mergeID("b"), DepType: DepImport, Confidence: 0.4}}

	high := Empty("/repo")
	high.Edges = []IREdge{{Src: mergeID("a"), Dst: mergeID("b"), DepType: DepImport, Confidence: 0.9}}

	got, err := NewMerger().Merge([]ArchitectureIR{low, high})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(got.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(got.Edges))
	}
	if got.Edges[0].Confidence != 0.9 {
		t.Errorf("merged edge confidence = %v, want 0.9", got.Edges[0].Confidence)
	}
}

func TestMergeMetadataNamespaced(t *testing.T) {
	a := Empty("/repo")
	a.ProducedBy = "pyimports"
	a.Metadata = map[string]any{"files": 10}

	b := Empty("/repo")
	b.ProducedBy = "pyimports"
	b.Metadata = map[string]any{"files": 3}

	got, err := NewMerger().Merge([]ArchitectureIR{a, b})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	sources, ok := got.Metadata["sources"].(map[string]any)
	if !ok {
		t.Fatalf("metadata sources missing: %v", got.Metadata)
	}
	if _, ok := sources["pyimports"]; !ok {
		t.Errorf("sources missing pyimports: %v", sources)
	}
	if _, ok := sources["pyimports#2"]; !ok {
		t.Errorf("colliding source not suffixed: %v", sources)
	}
	base, ok := got.Metadata["base"].(map[string]any)
	if !ok || base["files"] != 10 {
		t.Errorf("base metadata = %v, want first graph's metadata", got.Metadata["base"])
	}
}

func TestMergeDeterministic(t *testing.T) {
	build := func() []ArchitectureIR {
		a := Empty("/repo")
		a.Nodes = []IRNode{
			{ID: mergeID("a"), Kind: KindModule},
			{ID: mergeID("b"), Kind: KindModule, Path: "b.py"},
		}
		a.Edges = []IREdge{{Src: mergeID("a"), Dst: mergeID("b"), DepType: DepImport, Confidence: 1}}
		b := Empty("/repo")
		b.Nodes = []IRNode{{ID: mergeID("b"), Kind: KindModule}}
		return []ArchitectureIR{a, b}
	}

	nz := NewNormalizer()
	first, err := NewMerger().Merge(build())
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	second, err := NewMerger().Merge(build())
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !reflect.DeepEqual(nz.Normalize(first), nz.Normalize(second)) {
		t.Errorf("same inputs produced different merged graphs")
	}
}
