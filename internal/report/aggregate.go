package report

import (
	"sort"
	"strconv"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/rscscan/rscscan/internal/types"
)

// Process exit codes.
const (
	ExitClean      = 0
	ExitSetupError = 1
	ExitVulnerable = 2
)

// Aggregate builds a report from verdicts in the given order. Duplicates are
// counted as often as they appear.
func Aggregate(verdicts []types.Verdict) types.Report {
	r := types.Report{Verdicts: verdicts}
	if r.Verdicts == nil {
		r.Verdicts = []types.Verdict{}
	}
	for _, v := range verdicts {
		if v.Vulnerable {
			r.VulnerableCount++
		}
	}
	return r
}

// ExitCode maps a completed report onto the process exit status.
func ExitCode(r types.Report) int {
	if r.VulnerableCount > 0 {
		return ExitVulnerable
	}
	return ExitClean
}

// Fingerprint hashes the label, outcome and reason of every verdict. Verdicts
// are sorted first so two runs over an unchanged tree agree regardless of
// traversal order.
func Fingerprint(r types.Report) string {
	lines := make([]string, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		lines = append(lines, v.Target.Label+"|"+strconv.FormatBool(v.Vulnerable)+"|"+v.Reason)
	}
	sort.Strings(lines)
	return fastHash([]byte(strings.Join(lines, "\n")))
}

// SortByLabel orders verdicts by label for diffable output.
func SortByLabel(vs []types.Verdict) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Target.Label < vs[j].Target.Label
	})
}

func fastHash(b []byte) string {
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
