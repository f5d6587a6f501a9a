package ir

import (
	"regexp"
	"strings"
	"sync"
)

// GlobMatch reports whether s matches pattern using shell-style globbing.
// `*` matches any run of characters including separators, `?` matches one
// character, and `[...]` matches a character class. Matching is
// case-sensitive and anchored to the whole string.
func GlobMatch(pattern, s string) bool {
	re, err := compileGlob(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// RegexSearch reports whether pattern matches anywhere in s.
// An invalid pattern matches nothing.
func RegexSearch(pattern, s string) bool {
	re, err := cachedRegexp(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

var (
	globMu    sync.Mutex
	globCache = map[string]*regexp.Regexp{}

	reMu    sync.Mutex
	reCache = map[string]*regexp.Regexp{}
)

func compileGlob(pattern string) (*regexp.Regexp, error) {
	globMu.Lock()
	defer globMu.Unlock()
	if re, ok := globCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		return nil, err
	}
	globCache[pattern] = re
	return re, nil
}

func cachedRegexp(pattern string) (*regexp.Regexp, error) {
	reMu.Lock()
	defer reMu.Unlock()
	if re, ok := reCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	reCache[pattern] = re
	return re, nil
}

func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString(`\A`)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			b.WriteByte('[')
			if strings.HasPrefix(class, "!") {
				b.WriteByte('^')
				class = class[1:]
			}
			b.WriteString(strings.ReplaceAll(class, `\`, `\\`))
			b.WriteByte(']')
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`\z`)
	return b.String()
}

// NodeFilter selects nodes from an index
type NodeFilter func(*IRNode) bool

// EdgeFilter selects edges from an index
type EdgeFilter func(*IREdge) bool

// SelectNodes returns index nodes matching all filters, in index order
func SelectNodes(idx *Index, filters ...NodeFilter) []*IRNode {
	var out []*IRNode
	for i := range idx.Nodes {
		n := &idx.Nodes[i]
		ok := true
		for _, f := range filters {
			if !f(n) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, n)
		}
	}
	return out
}

// SelectEdges returns index edges matching all filters, in index order
func SelectEdges(idx *Index, filters ...EdgeFilter) []*IREdge {
	var out []*IREdge
	for i := range idx.Edges {
		e := &idx.Edges[i]
		ok := true
		for _, f := range filters {
			if !f(e) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}
