package ir

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"windows separators", `services\billing\domain.py`, "services/billing/domain.py"},
		{"leading dot slash", "./services/api.py", "services/api.py"},
		{"double slashes", "services//billing///api.py", "services/billing/api.py"},
		{"already clean", "services/billing/api.py", "services/billing/api.py"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"sorted and deduped", []string{"b", "a", "b", " a "}, []string{"a", "b"}},
		{"blank entries dropped", []string{"", "  ", "x"}, []string{"x"}},
		{"empty becomes nil", []string{"", ""}, nil},
		{"nil stays nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below range", -1, 0},
		{"above range", 2, 1},
		{"nan", math.NaN(), 0},
		{"in range", 0.25, 0.25},
		{"zero", 0, 0},
		{"one", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampConfidence(tt.in); got != tt.want {
				t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func testGraph() ArchitectureIR {
	idA := CanonicalId{Language: LangPython, CodeRoot: "billing", FQName: "services.billing.api"}
	idB := CanonicalId{Language: LangPython, CodeRoot: "billing", FQName: "services.billing.domain"}
	g := Empty("/repo")
	g.Nodes = []IRNode{
		{ID: idB, Kind: KindModule, Path: `services\billing\domain.py`, Tags: []string{"z", "a", "a"}},
		{ID: idA, Kind: KindModule, Path: "./services/billing/api.py",
			Attributes: map[string]any{"b": 2, "a": 1}},
	}
	g.Edges = []IREdge{
		{Src: idA, Dst: idB, DepType: DepImport, Confidence: 2.0},
		{Src: idA, Dst: idB, DepType: DepCall, Confidence: -0.5},
	}
	return g
}

func TestNormalizerOrdersAndCleans(t *testing.T) {
	nz := NewNormalizer()
	got := nz.Normalize(testGraph())

	if got.Nodes[0].ID.FQName != "services.billing.api" {
		t.Errorf("first node = %s, want services.billing.api", got.Nodes[0].ID.FQName)
	}
	if got.Nodes[1].Path != "services/billing/domain.py" {
		t.Errorf("node path = %q, want services/billing/domain.py", got.Nodes[1].Path)
	}
	if want := []string{"a", "z"}; !reflect.DeepEqual(got.Nodes[1].Tags, want) {
		t.Errorf("node tags = %v, want %v", got.Nodes[1].Tags, want)
	}
	// edges sort by dep_type first
	if got.Edges[0].DepType != DepCall {
		t.Errorf("first edge dep_type = %s, want call", got.Edges[0].DepType)
	}
	if got.Edges[0].Confidence != 0 {
		t.Errorf("clamped confidence = %v, want 0", got.Edges[0].Confidence)
	}
	if got.Edges[1].Confidence != 1 {
		t.Errorf("clamped confidence = %v, want 1", got.Edges[1].Confidence)
	}
}

func TestNormalizerIdempotent(t *testing.T) {
	nz := NewNormalizer()
	once := nz.Normalize(testGraph())
	twice := nz.Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize(Normalize(g)) != Normalize(g)")
	}
}

func TestNormalizerDoesNotMutateInput(t *testing.T) {
	g := testGraph()
	NewNormalizer().Normalize(g)
	if g.Nodes[0].Path != `services\billing\domain.py` {
		t.Errorf("input graph was mutated: path = %q", g.Nodes[0].Path)
	}
}
