package rscscan

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rscscan/rscscan/internal/config"
)

var (
	cfgOutput     string
	cfgExclude    string
	cfgThreads    int
	cfgSorted     bool
	cfgAllFolders bool
	cfgTimeout    time.Duration
	cfgNoColor    bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .rscscan.yml with the selected options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".rscscan.yml", "output file path")
	initCmd.Flags().StringVar(&cfgExclude, "exclude", "", "comma-separated directory globs to skip")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().BoolVar(&cfgSorted, "sorted", false, "walk and report in lexical order")
	initCmd.Flags().BoolVar(&cfgAllFolders, "all-folders", false, "report every folder by default")
	initCmd.Flags().DurationVar(&cfgTimeout, "timeout", 0, "default scan deadline (0 = none)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	fc := config.FileConfig{
		Exclude:    optStrPtr(cfgExclude),
		Threads:    intPtr(cfgThreads),
		Sorted:     boolPtr(cfgSorted),
		AllFolders: boolPtr(cfgAllFolders),
		NoColor:    boolPtr(cfgNoColor),
	}
	if cfgTimeout > 0 {
		fc.Timeout = strPtr(cfgTimeout.String())
	}
	if err := config.Save(cfgOutput, fc); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func boolPtr(v bool) *bool { return &v }
