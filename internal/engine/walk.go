package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Walker performs an iterative, stack-based depth-first traversal of a
// directory tree. Symbolic links are never followed: os.ReadDir reports them
// with a symlink type, so they are not pushed as directories.
type Walker struct {
	// Exclude prunes directories by exact base name at every depth.
	Exclude ExclusionSet
	// Globs prunes additional directories by doublestar pattern, matched
	// against the path relative to Base and against the base name.
	Globs []string
	// Base anchors relative glob matching. Empty means the walk start.
	Base string
	// Sorted makes the visit order lexical instead of LIFO over ReadDir order.
	Sorted bool
	Logger *zap.Logger
}

// NewWalker returns a walker using the default exclusion set.
func NewWalker() Walker {
	return Walker{Exclude: DefaultExclusions()}
}

func (w Walker) log() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

// visitFunc receives each visited directory and its listing. entries is nil
// when the directory could not be listed.
type visitFunc func(dir string, entries []fs.DirEntry)

// walk visits start first, then every reachable non-excluded directory.
// Listing failures are absorbed: the failing directory contributes no
// children. A done context stops the walk between directories.
func (w Walker) walk(ctx context.Context, start string, visit visitFunc) {
	base := w.Base
	if base == "" {
		base = start
	}
	pending := []string{start}
	for len(pending) > 0 {
		if ctx.Err() != nil {
			w.log().Debug("walk interrupted", zap.String("start", start), zap.Error(ctx.Err()))
			return
		}
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			w.log().Debug("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
			visit(dir, nil)
			continue
		}
		visit(dir, entries)

		children := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if w.Exclude.IsExcluded(name) {
				continue
			}
			child := filepath.Join(dir, name)
			if len(w.Globs) > 0 {
				if rel, err := filepath.Rel(base, child); err == nil && matchAnyGlob(rel, w.Globs) {
					continue
				}
			}
			children = append(children, child)
		}
		if w.Sorted {
			// ReadDir is already lexical; push in reverse so pops come out in order.
			for i := len(children) - 1; i >= 0; i-- {
				pending = append(pending, children[i])
			}
			continue
		}
		pending = append(pending, children...)
	}
}

// Anchored returns a copy of w whose globs are matched relative to base.
func (w Walker) Anchored(base string) Walker {
	w.Base = base
	return w
}

// Dirs returns every directory reachable from start, start itself first.
func (w Walker) Dirs(ctx context.Context, start string) []string {
	var out []string
	w.walk(ctx, start, func(dir string, _ []fs.DirEntry) {
		out = append(out, dir)
	})
	return out
}

// Files returns every regular file under dir whose base name satisfies keep.
// Excluded directories are not descended into.
func (w Walker) Files(ctx context.Context, dir string, keep func(name string) bool) []string {
	var out []string
	w.walk(ctx, dir, func(d string, entries []fs.DirEntry) {
		for _, e := range entries {
			if e.IsDir() || !e.Type().IsRegular() {
				continue
			}
			if keep != nil && !keep(e.Name()) {
				continue
			}
			out = append(out, filepath.Join(d, e.Name()))
		}
	})
	return out
}
