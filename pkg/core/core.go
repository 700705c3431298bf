package core

import (
	"context"

	"github.com/rscscan/rscscan/internal/engine"
	"github.com/rscscan/rscscan/internal/report"
	"github.com/rscscan/rscscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config  = engine.Config
	Root    = engine.Root
	Result  = engine.Result
	Verdict = types.Verdict
	Report  = types.Report
)

const (
	ModeManifests  = engine.ModeManifests
	ModeAllFolders = engine.ModeAllFolders
)

// ErrRootNotFound is returned when a root is missing or not a directory.
var ErrRootNotFound = engine.ErrRootNotFound

// Scan is the stable entrypoint for other programs.
func Scan(ctx context.Context, cfg Config) (Report, error) {
	return engine.Scan(ctx, cfg)
}

// ScanWithStats runs a scan and returns the report with timing and counts.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	return engine.ScanWithStats(ctx, cfg)
}

// TreeRoot seeds a scan of a whole directory tree.
func TreeRoot(path string) (Root, error) { return engine.TreeRoot(path) }

// ChildRoots seeds one scan root per immediate subdirectory of dir.
func ChildRoots(dir string) ([]Root, error) {
	return engine.ChildRoots(dir, "", engine.DefaultExclusions())
}

// WordPressRoots seeds one scan root per plugin and theme of a wp-content dir.
func WordPressRoots(contentDir string) ([]Root, error) {
	return engine.WordPressRoots(contentDir, engine.DefaultExclusions())
}

// ExitCode maps a report onto the recommended process exit status.
func ExitCode(r Report) int { return report.ExitCode(r) }
