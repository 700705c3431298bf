package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rscscan/rscscan/internal/detectors"
	"github.com/rscscan/rscscan/internal/report"
	"github.com/rscscan/rscscan/internal/types"
)

// ErrRootNotFound is returned when a seed path is missing or not a directory.
// No traversal happens in that case.
var ErrRootNotFound = errors.New("root not found")

// fileMarker is swapped in tests to simulate unreadable files.
var fileMarker = detectors.FileMarker

// Mode selects how targets are enumerated under each root.
type Mode int

const (
	// ModeManifests analyzes every directory that contains a package.json.
	ModeManifests Mode = iota
	// ModeAllFolders analyzes every walked directory.
	ModeAllFolders
)

func (m Mode) String() string {
	if m == ModeAllFolders {
		return "all-folders"
	}
	return "manifests"
}

// Config controls a scan run.
type Config struct {
	Roots []Root
	Mode  Mode
	// Exclusions overrides the built-in exclusion set when non-zero.
	Exclusions   ExclusionSet
	ExcludeGlobs string
	// Sorted makes traversal order lexical and reproducible.
	Sorted bool
	// Threads bounds concurrent target analysis (0 = GOMAXPROCS).
	Threads int
	// Timeout aborts the run early and returns a partial report.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Result is a report plus run statistics.
type Result struct {
	Report   types.Report
	Roots    []Root
	Targets  int
	Duration time.Duration
	// Partial is set when the deadline expired before all targets finished.
	Partial bool
}

// Walker builds the walker described by cfg.
func (cfg Config) Walker() Walker {
	excl := cfg.Exclusions
	if excl.names == nil {
		excl = DefaultExclusions()
	}
	return Walker{
		Exclude: excl,
		Globs:   ParseGlobs(cfg.ExcludeGlobs),
		Sorted:  cfg.Sorted,
		Logger:  cfg.Logger,
	}
}

// Scan runs a scan and returns only the report.
func Scan(ctx context.Context, cfg Config) (types.Report, error) {
	res, err := ScanWithStats(ctx, cfg)
	if err != nil {
		return types.Report{}, err
	}
	return res.Report, nil
}

// ScanWithStats validates the roots, enumerates targets in discovery order,
// analyzes them on a bounded pool and aggregates the verdicts.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	for _, r := range cfg.Roots {
		if err := CheckRoot(r.Path); err != nil {
			return result, err
		}
	}
	result.Roots = cfg.Roots

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	w := cfg.Walker()
	log.Debug("scan started", zap.Int("roots", len(cfg.Roots)), zap.Stringer("mode", cfg.Mode))

	// Roots without any manifest still get exactly one verdict.
	var targets []types.ScanTarget
	// bases[i] is the root path targets[i] was found under.
	var bases []string
	fixed := map[int]types.Verdict{}
	for _, r := range cfg.Roots {
		var found []types.ScanTarget
		switch cfg.Mode {
		case ModeAllFolders:
			found = FolderTargets(ctx, w, r)
		default:
			found = FindManifestDirs(ctx, w, r)
			if len(found) == 0 && ctx.Err() == nil {
				fixed[len(targets)] = types.Verdict{Target: r.Target(), Reason: ReasonNoManifestUnderRoot}
				found = []types.ScanTarget{r.Target()}
			}
		}
		targets = append(targets, found...)
		for range found {
			bases = append(bases, r.Path)
		}
	}
	result.Targets = len(targets)

	verdicts := make([]types.Verdict, len(targets))
	done := make([]bool, len(targets))
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, t := range targets {
		if v, ok := fixed[i]; ok {
			verdicts[i], done[i] = v, true
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			v := Analyze(gctx, w.Anchored(bases[i]), t)
			// An analysis cut short by the deadline may have missed files.
			if gctx.Err() != nil {
				return nil
			}
			verdicts[i], done[i] = v, true
			log.Debug("target analyzed", zap.String("target", t.Label), zap.Bool("vulnerable", v.Vulnerable), zap.String("reason", v.Reason))
			return nil
		})
	}
	_ = g.Wait()

	completed := make([]types.Verdict, 0, len(verdicts))
	for i, v := range verdicts {
		if done[i] {
			completed = append(completed, v)
		}
	}
	result.Partial = ctx.Err() != nil
	result.Report = report.Aggregate(completed)
	result.Duration = time.Since(started)
	if result.Partial {
		log.Warn("scan deadline reached, report is partial", zap.Int("analyzed", len(completed)), zap.Int("targets", len(targets)))
	}
	log.Debug("scan finished", zap.Int("targets", len(targets)), zap.Int("vulnerable", result.Report.VulnerableCount), zap.Duration("duration", result.Duration))
	return result, nil
}

// CheckRoot reports ErrRootNotFound unless p is an existing directory.
func CheckRoot(p string) error {
	st, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRootNotFound, p, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, p)
	}
	return nil
}

// TreeRoot seeds a single walk from p. Labels are relative to p itself.
func TreeRoot(p string) (Root, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return Root{}, fmt.Errorf("%w: %s: %v", ErrRootNotFound, p, err)
	}
	if err := CheckRoot(abs); err != nil {
		return Root{}, err
	}
	return Root{Path: abs, Name: "."}, nil
}

// ChildRoots seeds one walk per immediate child directory of dir, each named
// prefix/child. Excluded names and plain files are skipped.
func ChildRoots(dir, prefix string, excl ExclusionSet) ([]Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, dir, err)
	}
	if err := CheckRoot(abs); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, abs, err)
	}
	var roots []Root
	for _, e := range entries {
		if !e.IsDir() || excl.IsExcluded(e.Name()) {
			continue
		}
		name := e.Name()
		if prefix != "" {
			name = prefix + "/" + name
		}
		roots = append(roots, Root{Path: filepath.Join(abs, e.Name()), Name: name})
	}
	return roots, nil
}

// WordPressRoots seeds one walk per plugin and theme under a wp-content
// directory. At least one of plugins/ and themes/ must exist.
func WordPressRoots(contentDir string, excl ExclusionSet) ([]Root, error) {
	var roots []Root
	seen := 0
	for _, sub := range []string{"plugins", "themes"} {
		p := filepath.Join(contentDir, sub)
		if CheckRoot(p) != nil {
			continue
		}
		seen++
		rs, err := ChildRoots(p, sub, excl)
		if err != nil {
			return nil, err
		}
		roots = append(roots, rs...)
	}
	if seen == 0 {
		return nil, fmt.Errorf("%w: %s has neither plugins/ nor themes/", ErrRootNotFound, contentDir)
	}
	return roots, nil
}
