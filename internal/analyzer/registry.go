package analyzer

import (
	"sort"

	"archlint/internal/ir"
)

// Registered pairs an analyzer with its provenance for debugging
type Registered struct {
	Analyzer Analyzer
	Source   string
}

// Registry holds explicitly registered analyzers. Registration is explicit
// and happens at wiring time; there is no runtime discovery.
type Registry struct {
	entries []Registered
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an analyzer. Source identifies where it came from,
// e.g. "builtin" or a package path.
func (r *Registry) Register(a Analyzer, source string) {
	if a == nil {
		return
	}
	if source == "" {
		source = "manual"
	}
	r.entries = append(r.entries, Registered{Analyzer: a, Source: source})
}

// All returns every registered analyzer in registration order
func (r *Registry) All() []Registered {
	out := make([]Registered, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByLanguage returns the analyzers registered for a language
func (r *Registry) ByLanguage(lang ir.Language) []Registered {
	var out []Registered
	for _, e := range r.entries {
		if e.Analyzer.Language() == lang {
			out = append(out, e)
		}
	}
	return out
}

// BestForRepo selects the analyzers whose detection check accepts the
// repository. Multiple analyzers can match a polyglot repo. A panicking
// detection check counts as "cannot analyze".
func (r *Registry) BestForRepo(repoRoot string) []Registered {
	var selected []Registered
	for _, e := range r.entries {
		if safeCanAnalyze(e.Analyzer, repoRoot) {
			selected = append(selected, e)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Analyzer.PluginID() != selected[j].Analyzer.PluginID() {
			return selected[i].Analyzer.PluginID() < selected[j].Analyzer.PluginID()
		}
		return selected[i].Source < selected[j].Source
	})
	return selected
}

func safeCanAnalyze(a Analyzer, repoRoot string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return a.CanAnalyze(repoRoot)
}
