package report

import (
	"encoding/json"
	"io"
	"path"
	"sort"

	"github.com/rscscan/rscscan/internal/detectors"
	"github.com/rscscan/rscscan/internal/types"
)

type sarif struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

// WriteSARIF writes the vulnerable verdicts of r as SARIF 2.1.0.
func WriteSARIF(w io.Writer, r types.Report, toolVersion string) error {
	ids := make([]string, 0, len(detectors.Rules))
	for id := range detectors.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	index := make(map[string]int, len(ids))
	driver := sarifDriver{Name: "rscscan", Version: toolVersion}
	for i, id := range ids {
		index[id] = i
		driver.Rules = append(driver.Rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: detectors.Rules[id]}})
	}

	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: []sarifResult{}}
	for _, v := range r.Verdicts {
		if !v.Vulnerable {
			continue
		}
		uri := v.Target.Label
		if v.Evidence != "" {
			uri = path.Join(uri, v.Evidence)
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    v.Rule,
			RuleIndex: index[v.Rule],
			Level:     "warning",
			Message:   sarifMessage{Text: v.Reason},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: uri}},
			}},
		})
	}
	doc := sarif{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
