package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rscscan/rscscan/internal/detectors"
	"github.com/rscscan/rscscan/internal/types"
)

// Verdict reasons that are not built from an indicator.
const (
	ReasonNoManifest          = "no package.json"
	ReasonNoManifestUnderRoot = "no package.json found anywhere under this folder"
	ReasonInvalidManifest     = "package.json present but invalid"
	ReasonNoIndicators        = "no indicators found"
)

// Analyze classifies a single target: manifest dependencies first, then a
// marker scan over its code files. Filesystem and content problems degrade
// into the verdict reason; Analyze never fails.
func Analyze(ctx context.Context, w Walker, target types.ScanTarget) types.Verdict {
	v := types.Verdict{Target: target}

	m, state := detectors.LoadManifest(target.Path)
	switch state {
	case detectors.ManifestAbsent:
		v.Reason = ReasonNoManifest
		return v
	case detectors.ManifestInvalid:
		v.HasManifest = true
		v.Reason = ReasonInvalidManifest
		return v
	}
	v.HasManifest = true

	if ind, ok := detectors.Classify(m); ok {
		v.Vulnerable = true
		v.Reason = ind.Reason
		v.Rule = ind.Rule
		v.Evidence = detectors.ManifestName
		return v
	}

	if rel, marker, ok := FirstMarkedFile(ctx, w, target.Path); ok {
		v.Vulnerable = true
		v.Reason = fmt.Sprintf("%s found in %s", marker, rel)
		v.Rule = detectors.RuleSourceMarker
		v.Evidence = rel
		return v
	}

	v.Reason = ReasonNoIndicators
	return v
}

// FirstMarkedFile scans the code files under dir and returns the first one
// containing a marker, as a slash-separated path relative to dir. Unreadable
// files count as unmarked. Exclude globs are matched relative to w.Base, so
// pass the walker anchored at the scan root.
func FirstMarkedFile(ctx context.Context, w Walker, dir string) (rel, marker string, ok bool) {
	for _, f := range w.Files(ctx, dir, detectors.IsCodeFile) {
		if ctx.Err() != nil {
			return "", "", false
		}
		m, err := fileMarker(f)
		if err != nil {
			w.log().Debug("skipping unreadable file", zap.String("file", f), zap.Error(err))
			continue
		}
		if m == "" {
			continue
		}
		r, err := filepath.Rel(dir, f)
		if err != nil {
			r = f
		}
		return filepath.ToSlash(r), m, true
	}
	return "", "", false
}
