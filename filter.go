package dirwatch

import (
	"path"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Default pattern sets applied when the user supplies none
var (
	// DefaultInclude matches every path
	DefaultInclude = []string{"*"}

	// DefaultExclude matches dotfiles and anything inside a dot-directory at
	// the root of the watched tree, which keeps version-control metadata from
	// triggering runs
	DefaultExclude = []string{".*"}
)

// Filter decides whether a filesystem event is relevant to the managed
// command. Patterns are fnmatch-style globs: `*` and `?` match across path
// separators, so "*.go" matches "src/main.go", and matching is
// case-sensitive. A path is relevant when it matches at least one include
// pattern and none of the exclude patterns.
//
// A Filter is immutable and safe for concurrent use.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles the given pattern sets. An empty set falls back to
// DefaultInclude or DefaultExclude respectively. A pattern that does not
// compile is reported as a *PatternError.
func NewFilter(include, exclude []string) (*Filter, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}

	f := &Filter{}
	var err error
	if f.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compilePatterns(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, &PatternError{Pattern: p, Err: err}
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Match reports whether ev is relevant. Directory-batch notifications never
// match; rename events match if either side of the rename matches.
func (f *Filter) Match(ev Event) bool {
	if ev.Kind == KindDirectoryBatch {
		return false
	}
	if f.matchPath(ev.Path) {
		return true
	}
	return ev.RenamedTo != "" && f.matchPath(ev.RenamedTo)
}

func (f *Filter) matchPath(p string) bool {
	p = normalizePath(p)

	included := false
	for _, g := range f.include {
		if g.Match(p) {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, g := range f.exclude {
		if g.Match(p) {
			return false
		}
	}
	return true
}

// normalizePath rewrites p with forward slashes and no redundant separators
// so patterns behave the same on every platform.
func normalizePath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
