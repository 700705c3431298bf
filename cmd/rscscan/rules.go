package rscscan

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rscscan/rscscan/internal/detectors"
	"github.com/rscscan/rscscan/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List indicator rules, source markers and excluded directories",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			ids := make([]string, 0, len(detectors.Rules))
			for id := range detectors.Rules {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(out, "%-18s %s\n", id, detectors.Rules[id])
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "markers:")
			for _, m := range detectors.Markers {
				fmt.Fprintln(out, "  "+m)
			}
			names := engine.DefaultExclusions().Names()
			sort.Strings(names)
			fmt.Fprintln(out, "excluded directories:")
			for _, n := range names {
				fmt.Fprintln(out, "  "+n)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
