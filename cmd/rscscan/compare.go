package rscscan

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rscscan/rscscan/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compare <before.json> <after.json>",
		Short: "Compare two JSON reports and list changed verdicts",
		Args:  cobra.ExactArgs(2),
		RunE:  runCompare,
	}
	rootCmd.AddCommand(cmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	before, err := loadEnvelope(args[0])
	if err != nil {
		return err
	}
	after, err := loadEnvelope(args[1])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if before.Fingerprint == after.Fingerprint {
		fmt.Fprintln(out, "Reports are identical ✅")
		return nil
	}

	prev := map[string]string{}
	for _, v := range before.Verdicts {
		prev[v.Target.Label] = string(v.Status())
	}
	next := map[string]string{}
	for _, v := range after.Verdicts {
		next[v.Target.Label] = string(v.Status())
	}
	labels := make([]string, 0, len(prev)+len(next))
	for l := range prev {
		labels = append(labels, l)
	}
	for l := range next {
		if _, ok := prev[l]; !ok {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	for _, l := range labels {
		a, inA := prev[l]
		b, inB := next[l]
		switch {
		case !inA:
			fmt.Fprintf(out, "+ %s (%s)\n", l, b)
		case !inB:
			fmt.Fprintf(out, "- %s (%s)\n", l, a)
		case a != b:
			fmt.Fprintf(out, "~ %s %s -> %s\n", l, a, b)
		}
	}
	fmt.Fprintf(out, "Possibly vulnerable: %d -> %d\n", before.VulnerableCount, after.VulnerableCount)
	if after.VulnerableCount > before.VulnerableCount {
		exitCode = report.ExitVulnerable
	}
	return nil
}

func loadEnvelope(path string) (report.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Envelope{}, err
	}
	defer f.Close()
	env, err := report.ReadJSON(f)
	if err != nil {
		return report.Envelope{}, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}
