package rscscan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rscscan/rscscan/internal/audit"
	"github.com/rscscan/rscscan/internal/config"
	"github.com/rscscan/rscscan/internal/engine"
	"github.com/rscscan/rscscan/internal/files"
	"github.com/rscscan/rscscan/internal/report"
)

var (
	flagPath       string
	flagChildren   bool
	flagWordPress  bool
	flagAllFolders bool
	flagExclude    string
	flagSorted     bool
	flagTimeout    time.Duration
	flagAudit      bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "Scan directories for possibly vulnerable packages",
		Long: `Scan walks each path, analyzes every directory holding a package.json and
prints one verdict per package. By default each path is a single tree; use
--children to treat each immediate subdirectory as its own project, or
--wordpress to scan every plugin and theme under a wp-content directory.

With several paths, the config file, .rscscanignore and the --audit history
are taken from the first path only.

Exit status is 0 when nothing is flagged, 2 when at least one package is
possibly vulnerable and 1 when a path cannot be scanned.`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan when no positional paths are given")
	cmd.Flags().BoolVar(&flagChildren, "children", false, "treat each immediate subdirectory of the path as its own root")
	cmd.Flags().BoolVar(&flagWordPress, "wordpress", false, "path is a wp-content directory; scan each plugin and theme")
	cmd.Flags().BoolVar(&flagAllFolders, "all-folders", false, "report every folder, not only those with a package.json")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated directory globs to skip in addition to the built-in list")
	cmd.Flags().BoolVar(&flagSorted, "sorted", false, "walk and report in lexical order")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "abort after this long and report what was analyzed (0 = no limit)")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a record of this scan to the scan history")
	cmd.MarkFlagsMutuallyExclusive("children", "wordpress")
}

func runScan(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{flagPath}
	}
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", paths[0], err)
	}

	// Load configs: CLI > local > global
	gcfg, err := loadConfig(config.LoadGlobal())
	if err != nil {
		return fmt.Errorf("global config: %w", err)
	}
	lcfg, err := loadConfig(config.LoadLocal(abs))
	if err != nil {
		return fmt.Errorf("local config: %w", err)
	}

	timeout := flagTimeout
	if timeout == 0 {
		if s := pickString("", lcfg.Timeout, gcfg.Timeout); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("invalid timeout %q in config: %w", s, err)
			}
			timeout = d
		}
	}

	ignored, err := files.LoadIgnore(abs)
	if err != nil {
		return fmt.Errorf("read %s: %w", files.IgnoreFile, err)
	}

	cfg := engine.Config{
		ExcludeGlobs: files.JoinGlobs(pickString(flagExclude, lcfg.Exclude, gcfg.Exclude), ignored),
		Threads:      pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
		Sorted:       pickBool(flagSorted, lcfg.Sorted, gcfg.Sorted),
		Timeout:      timeout,
		Logger:       logger,
	}
	if pickBool(flagAllFolders, lcfg.AllFolders, gcfg.AllFolders) {
		cfg.Mode = engine.ModeAllFolders
	}

	roots, err := resolveRoots(paths, cfg.Walker().Exclude)
	if err != nil {
		return err
	}
	cfg.Roots = roots

	machine := flagJSON || flagSARIF
	if !machine {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Scanning %d root(s) under %s...\n", len(roots), abs)
	}
	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if cfg.Sorted {
		report.SortByLabel(res.Report.Verdicts)
	}
	rootPaths := make([]string, 0, len(roots))
	for _, r := range roots {
		rootPaths = append(rootPaths, r.Path)
	}
	env := report.NewEnvelope(res.Report, rootPaths, res.Partial)
	logger.Debug("report ready", zap.String("scan_id", env.ScanID), zap.String("fingerprint", env.Fingerprint), zap.Int("vulnerable", env.VulnerableCount))
	if flagAudit {
		rec := audit.CreateScanRecord(env.ScanID, rootPaths, res.Report, env.Fingerprint, res.Targets, res.Duration, res.Partial)
		if err := audit.NewAuditLog(abs).LogScan(rec); err != nil {
			logger.Warn("could not record scan history", zap.Error(err))
		}
	}

	out := cmd.OutOrStdout()
	noColor := pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor) || !isTerminal(out)
	opts := report.PrintOptions{NoColor: noColor, Duration: res.Duration, Targets: res.Targets, Partial: res.Partial}
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(out, res.Report, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(out, env); err != nil {
			return err
		}
	case flagText:
		report.PrintText(out, res.Report, opts)
	default:
		report.PrintTable(out, res.Report, opts)
	}

	exitCode = report.ExitCode(res.Report)
	return nil
}

// loadConfig treats a missing config file as an empty one.
func loadConfig(c config.FileConfig, err error) (config.FileConfig, error) {
	if errors.Is(err, config.ErrNoConfig) {
		return config.FileConfig{}, nil
	}
	return c, err
}

// resolveRoots applies the seeding policy selected by flags to each path.
func resolveRoots(paths []string, excl engine.ExclusionSet) ([]engine.Root, error) {
	var roots []engine.Root
	for _, p := range paths {
		switch {
		case flagWordPress:
			rs, err := engine.WordPressRoots(p, excl)
			if err != nil {
				return nil, err
			}
			roots = append(roots, rs...)
		case flagChildren:
			rs, err := engine.ChildRoots(p, "", excl)
			if err != nil {
				return nil, err
			}
			roots = append(roots, rs...)
		default:
			r, err := engine.TreeRoot(p)
			if err != nil {
				return nil, err
			}
			if len(paths) > 1 {
				r.Name = filepath.Base(r.Path)
			}
			roots = append(roots, r)
		}
	}
	return roots, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
