package engine

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/rscscan/rscscan/internal/detectors"
	"github.com/rscscan/rscscan/internal/types"
)

// Root is one seed of the walk. Name is the logical label of Path; target
// labels are Name joined with the path relative to Path.
type Root struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Label returns the display label of dir relative to the root.
func (r Root) Label(dir string) string {
	rel, err := filepath.Rel(r.Path, dir)
	if err != nil {
		rel = dir
	}
	return path.Join(r.Name, filepath.ToSlash(rel))
}

// Target returns the root itself as a scan target.
func (r Root) Target() types.ScanTarget {
	return types.ScanTarget{Path: r.Path, Label: r.Label(r.Path)}
}

// FindManifestDirs returns every directory under root that directly contains
// a package.json, in discovery order. Descent continues below a match so
// nested packages are separate targets.
func FindManifestDirs(ctx context.Context, w Walker, root Root) []types.ScanTarget {
	var out []types.ScanTarget
	w.Anchored(root.Path).walk(ctx, root.Path, func(dir string, entries []fs.DirEntry) {
		if containsManifest(entries) {
			out = append(out, types.ScanTarget{Path: dir, Label: root.Label(dir)})
		}
	})
	return out
}

// FolderTargets returns every walked directory under root as a target.
func FolderTargets(ctx context.Context, w Walker, root Root) []types.ScanTarget {
	dirs := w.Anchored(root.Path).Dirs(ctx, root.Path)
	out := make([]types.ScanTarget, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, types.ScanTarget{Path: d, Label: root.Label(d)})
	}
	return out
}

func containsManifest(entries []fs.DirEntry) bool {
	for _, e := range entries {
		if e.Name() == detectors.ManifestName && !e.IsDir() {
			return true
		}
	}
	return false
}
