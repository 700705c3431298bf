package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/rscscan/rscscan/internal/types"
)

type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
	Targets  int
	Partial  bool
}

var (
	vulnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	safeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func statusLabel(v types.Verdict, noColor bool) string {
	if v.Vulnerable {
		if noColor {
			return "VULNERABLE?"
		}
		return vulnStyle.Render("VULNERABLE?")
	}
	if noColor {
		return "SAFE"
	}
	return safeStyle.Render("SAFE")
}

// PrintTable renders verdicts as a bordered table followed by a summary.
func PrintTable(w io.Writer, r types.Report, opts PrintOptions) {
	if len(r.Verdicts) > 0 {
		rows := make([][]string, 0, len(r.Verdicts))
		for _, v := range r.Verdicts {
			rows = append(rows, []string{statusLabel(v, opts.NoColor), v.Target.Label, v.Reason})
		}
		table := tablewriter.NewWriter(w)
		table.Header("STATUS", "TARGET", "REASON")
		_ = table.Bulk(rows)
		_ = table.Render()
	}
	printSummary(w, r, opts)
}

// PrintText renders one line per verdict in plain columns.
func PrintText(w io.Writer, r types.Report, opts PrintOptions) {
	maxLabel := 6
	for _, v := range r.Verdicts {
		if l := len(v.Target.Label); l > maxLabel {
			maxLabel = l
		}
	}
	for _, v := range r.Verdicts {
		// pad before styling so escape codes don't skew the columns
		status := fmt.Sprintf("%-11s", statusLabel(v, true))
		if !opts.NoColor {
			if v.Vulnerable {
				status = vulnStyle.Render(status)
			} else {
				status = safeStyle.Render(status)
			}
		}
		fmt.Fprintf(w, "%s %-*s  %s\n", status, maxLabel, v.Target.Label, v.Reason)
	}
	printSummary(w, r, opts)
}

func printSummary(w io.Writer, r types.Report, opts PrintOptions) {
	if r.VulnerableCount == 0 {
		fmt.Fprintln(w, "No possibly-vulnerable packages found ✅")
	} else {
		fmt.Fprintf(w, "Possibly vulnerable: %d ⚠️\n", r.VulnerableCount)
	}
	if opts.Duration > 0 || opts.Targets > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Verdicts: %d (possibly vulnerable: %d, safe: %d)\n", len(r.Verdicts), r.VulnerableCount, len(r.Verdicts)-r.VulnerableCount)
		if opts.Duration > 0 {
			fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
		}
		if opts.Targets > 0 {
			fmt.Fprintf(w, "Targets analyzed: %d\n", opts.Targets)
		}
	}
	if opts.Partial {
		fmt.Fprintln(w, "Deadline reached: report is partial")
	}
}
