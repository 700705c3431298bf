package report

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/rscscan/rscscan/internal/types"
)

// Envelope is the JSON document emitted by --json.
type Envelope struct {
	ScanID          string          `json:"scan_id"`
	Roots           []string        `json:"roots"`
	Fingerprint     string          `json:"fingerprint"`
	VulnerableCount int             `json:"vulnerable_count"`
	Partial         bool            `json:"partial,omitempty"`
	Verdicts        []types.Verdict `json:"verdicts"`
}

// NewEnvelope wraps r with a fresh scan ID and its fingerprint.
func NewEnvelope(r types.Report, roots []string, partial bool) Envelope {
	vs := r.Verdicts
	if vs == nil {
		vs = []types.Verdict{}
	}
	return Envelope{
		ScanID:          uuid.NewString(),
		Roots:           roots,
		Fingerprint:     Fingerprint(r),
		VulnerableCount: r.VulnerableCount,
		Partial:         partial,
		Verdicts:        vs,
	}
}

// WriteJSON pretty-prints the envelope.
func WriteJSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ReadJSON decodes an envelope, used to compare runs.
func ReadJSON(r io.Reader) (Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
