// Package audit keeps an append-only JSONL history of scans.
package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rscscan/rscscan/internal/types"
)

// maxFlagged caps the labels copied into a record.
const maxFlagged = 10

type ScanRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	ScanID          string    `json:"scan_id"`
	Roots           []string  `json:"roots"`
	Targets         int       `json:"targets"`
	VulnerableCount int       `json:"vulnerable_count"`
	Fingerprint     string    `json:"fingerprint"`
	Duration        string    `json:"duration"`
	Partial         bool      `json:"partial,omitempty"`
	Flagged         []string  `json:"flagged,omitempty"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog places the log in root/.git when root is a checkout, else in
// root itself.
func NewAuditLog(root string) *AuditLog {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".rscscan_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "rscscan_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns records newest first. Lines that fail to decode are
// skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	lines, err := a.readLines()
	if err != nil {
		return nil, err
	}
	records := make([]ScanRecord, 0, len(lines))
	for _, l := range lines {
		if l.ok {
			records = append(records, l.record)
		}
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", time.Now().Unix())
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index in LoadHistory order. Lines that
// do not decode are written back untouched.
func (a *AuditLog) DeleteRecord(index int) error {
	lines, err := a.readLines()
	if err != nil {
		return err
	}
	// LoadHistory index 0 is the newest decodable line.
	target := -1
	seen := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if !lines[i].ok {
			continue
		}
		if seen == index {
			target = i
			break
		}
		seen++
	}
	if index < 0 || target < 0 {
		return fmt.Errorf("invalid index: %d", index)
	}

	var buf bytes.Buffer
	for i, l := range lines {
		if i == target {
			continue
		}
		buf.Write(l.raw)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(a.logPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to rewrite audit log: %w", err)
	}
	return nil
}

type logLine struct {
	raw    []byte
	record ScanRecord
	ok     bool
}

// readLines returns every non-blank line of the log, oldest first.
func (a *AuditLog) readLines() ([]logLine, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var lines []logLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		l := logLine{raw: append([]byte(nil), raw...)}
		l.ok = json.Unmarshal(raw, &l.record) == nil
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return lines, nil
}

// CreateScanRecord summarises a finished report.
func CreateScanRecord(scanID string, roots []string, r types.Report, fingerprint string, targets int, duration time.Duration, partial bool) ScanRecord {
	var flagged []string
	for _, v := range r.Verdicts {
		if !v.Vulnerable {
			continue
		}
		if len(flagged) == maxFlagged {
			break
		}
		flagged = append(flagged, v.Target.Label)
	}
	return ScanRecord{
		Timestamp:       time.Now().UTC(),
		ScanID:          scanID,
		Roots:           roots,
		Targets:         targets,
		VulnerableCount: r.VulnerableCount,
		Fingerprint:     fingerprint,
		Duration:        duration.String(),
		Partial:         partial,
		Flagged:         flagged,
	}
}
