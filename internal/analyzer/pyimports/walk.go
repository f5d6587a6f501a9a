package pyimports

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Directories never worth descending into. Pruned by name so large vendored
// trees are skipped without per-file glob checks.
var skipDirNames = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"__pycache__":   true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".ruff_cache":   true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	"dist":          true,
	"build":         true,
	"site-packages": true,
	"node_modules":  true,
}

func skipDir(name string) bool {
	return skipDirNames[name] || strings.HasSuffix(name, ".egg-info")
}

var errFound = errors.New("found")

func hasPythonFile(root string) bool {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			return errFound
		}
		return nil
	})
	return errors.Is(err, errFound)
}

// normalizeIncludes resolves include paths against the repo root and drops
// anything escaping it. An empty include list means the whole repository.
func normalizeIncludes(root string, includes []string) []string {
	if len(includes) == 0 {
		return []string{root}
	}
	var out []string
	for _, p := range includes {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		p = filepath.Clean(p)
		if p != root && relPosix(root, p) == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{root}
	}
	return out
}

func collectPythonFiles(root string, includes, excludeGlobs []string, maxSize int64) []string {
	var files []string
	seen := map[string]bool{}

	add := func(path string, size int64) {
		rel := relPosix(root, path)
		if rel == "" || seen[path] {
			return
		}
		if size > maxSize || excludedBy(rel, excludeGlobs) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, base := range includes {
		filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != base && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".py") {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			add(path, info.Size())
			return nil
		})
	}
	return files
}

// relPosix returns the repo-relative forward-slash path, or "" when the
// path is outside the root.
func relPosix(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

func excludedBy(rel string, globs []string) bool {
	for _, g := range globs {
		if matchGlob(rel, strings.ReplaceAll(g, "\\", "/")) {
			return true
		}
	}
	return false
}

var (
	globMu    sync.Mutex
	globCache = map[string]*regexp.Regexp{}
)

func matchGlob(rel, pattern string) bool {
	globMu.Lock()
	re, ok := globCache[pattern]
	if !ok {
		re = globRegexp(pattern)
		globCache[pattern] = re
	}
	globMu.Unlock()
	return re.MatchString(rel)
}

// globRegexp translates a path glob to an anchored regexp. "**/" matches
// zero or more whole segments, "*" and "?" stay within one segment.
func globRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`\A`)
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				b.WriteString(`(?:.*/)?`)
				i += 3
			} else {
				b.WriteString(`.*`)
				i += 2
			}
		case c == '*':
			b.WriteString(`[^/]*`)
			i++
		case c == '?':
			b.WriteString(`[^/]`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	b.WriteString(`\z`)
	return regexp.MustCompile(b.String())
}
