package engine

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// defaultExcludeDirs are directory names never descended into.
var defaultExcludeDirs = []string{
	"node_modules",
	".git",
	"bower_components",
	"build",
	"dist",
	".next",
}

// ExclusionSet is an immutable set of directory base names that stop descent.
// The zero value excludes nothing.
type ExclusionSet struct {
	names map[string]struct{}
}

// NewExclusionSet builds a set from the given names. Empty names are ignored.
func NewExclusionSet(names ...string) ExclusionSet {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		m[n] = struct{}{}
	}
	return ExclusionSet{names: m}
}

// DefaultExclusions returns the built-in exclusion set.
func DefaultExclusions() ExclusionSet {
	return NewExclusionSet(defaultExcludeDirs...)
}

// IsExcluded reports whether a directory with this base name is pruned.
func (s ExclusionSet) IsExcluded(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Names returns the members of the set in no particular order.
func (s ExclusionSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	return out
}

// ParseGlobs splits a comma-separated glob list, dropping blanks. Each glob is
// also kept with leading "./" and "**/" trimmed so "**/fixtures" and
// "fixtures" both match a base name.
func ParseGlobs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if t := trimGlobPrefix(p); t != p && t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matchAnyGlob matches rel (slash-separated) and its base name against globs.
func matchAnyGlob(rel string, globs []string) bool {
	rp := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rp); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
