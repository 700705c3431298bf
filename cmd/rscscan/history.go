package rscscan

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rscscan/rscscan/internal/audit"
	"github.com/rscscan/rscscan/internal/files"
)

var (
	historyPath   string
	historyDelete int
	historyLimit  int
)

func init() {
	hist := &cobra.Command{
		Use:   "history",
		Short: "List scans recorded with scan --audit, newest first",
		RunE:  runHistory,
	}
	hist.Flags().StringVarP(&historyPath, "path", "p", ".", "directory the scans were run against")
	hist.Flags().IntVar(&historyDelete, "delete", -1, "delete the record at this index instead of listing")
	hist.Flags().IntVar(&historyLimit, "limit", 20, "show at most this many records (0 = all)")
	rootCmd.AddCommand(hist)

	ign := &cobra.Command{
		Use:   "ignore <glob>...",
		Short: "Add directory globs to " + files.IgnoreFile,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(historyPath)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", historyPath, err)
			}
			for _, g := range args {
				changed, err := files.AppendIgnore(dir, g)
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", g, files.IgnoreFile)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already ignored\n", g)
				}
			}
			return nil
		},
	}
	ign.Flags().StringVarP(&historyPath, "path", "p", ".", "directory holding "+files.IgnoreFile)
	rootCmd.AddCommand(ign)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	dir, err := filepath.Abs(historyPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", historyPath, err)
	}
	log := audit.NewAuditLog(dir)
	out := cmd.OutOrStdout()
	if historyDelete >= 0 {
		if err := log.DeleteRecord(historyDelete); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted record %d\n", historyDelete)
		return nil
	}
	recs, err := log.LoadHistory()
	if err != nil {
		return err
	}
	for i, r := range recs {
		if historyLimit > 0 && i >= historyLimit {
			break
		}
		partial := ""
		if r.Partial {
			partial = " (partial)"
		}
		fmt.Fprintf(out, "%3d  %s  %s  targets=%d vulnerable=%d  %s%s\n",
			i, r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Fingerprint, r.Targets, r.VulnerableCount, r.Duration, partial)
	}
	return nil
}
