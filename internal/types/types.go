package types

// Status is the coarse classification shown to users for a verdict.
type Status string

const (
	StatusSafe       Status = "safe"
	StatusVulnerable Status = "possibly-vulnerable"
)

// ScanTarget is one directory designated for manifest-based analysis. Path is
// the filesystem location; Label is relative to the logical root the caller
// seeded the walk from (e.g. a plugin's own top-level folder).
type ScanTarget struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// Verdict is the classification outcome for one ScanTarget.
type Verdict struct {
	Target      ScanTarget `json:"target"`
	HasManifest bool       `json:"has_manifest"`
	Vulnerable  bool       `json:"vulnerable"`
	Reason      string     `json:"reason"`
	// Rule identifies the indicator that flagged the target, if any.
	Rule string `json:"rule,omitempty"`
	// Evidence is the file, relative to the target, that triggered Rule.
	Evidence string `json:"evidence,omitempty"`
}

// Status maps the verdict onto its display status.
func (v Verdict) Status() Status {
	if v.Vulnerable {
		return StatusVulnerable
	}
	return StatusSafe
}

// Report is the ordered verdict sequence of a single run. Order is discovery
// order; VulnerableCount is derived from Verdicts by the aggregator.
type Report struct {
	Verdicts        []Verdict `json:"verdicts"`
	VulnerableCount int       `json:"vulnerable_count"`
}
