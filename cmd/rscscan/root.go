package rscscan

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rscscan/rscscan/internal/logging"
	"github.com/rscscan/rscscan/internal/report"
)

var (
	flagJSON    bool
	flagSARIF   bool
	flagText    bool
	flagThreads int
	flagNoColor bool
	flagVerbose bool

	version = "0.1.0"

	logger = zap.NewNop()
	// exitCode is set by commands that finish with a verdict-dependent status.
	exitCode = report.ExitClean
)

// rootCmd is the base Cobra command for the rscscan CLI.
var rootCmd = &cobra.Command{
	Use:   "rscscan",
	Short: "Flag packages exposed to React Server Components issues",
	Long: "rscscan walks a directory tree, finds package.json manifests and flags each package as safe or possibly vulnerable " +
		"based on declared dependencies and server directives in its source files.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger = logging.Must(flagVerbose)
		return nil
	},
}

// Execute runs the rscscan CLI and exits with its status. It should be called
// by the main package.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and returns the process exit code: 0 clean,
// 2 possibly vulnerable packages found, 1 for setup errors.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exitCode = report.ExitClean
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return report.ExitSetupError
	}
	return exitCode
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log skipped directories and per-target decisions to stderr")
}
