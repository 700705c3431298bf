package detectors

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FrameworkPackage ships React Server Components support out of the box.
	FrameworkPackage = "next"
	// ServerBridgePackage is the RSC wire-protocol implementation.
	ServerBridgePackage = "react-server-dom-webpack"
	// BaseLibrary is flagged from ReactMajorThreshold onwards.
	BaseLibrary         = "react"
	ReactMajorThreshold = 19
)

// Rule IDs reported with vulnerable verdicts.
const (
	RuleFramework    = "rsc-framework"
	RuleServerBridge = "rsc-server-bridge"
	RuleReactMajor   = "rsc-react-major"
	RuleSourceMarker = "rsc-source-marker"
)

// Rules describes every rule ID.
var Rules = map[string]string{
	RuleFramework:    "Manifest depends on a server components framework",
	RuleServerBridge: "Manifest depends on the server components wire protocol package",
	RuleReactMajor:   "Manifest depends on a React major version with server components",
	RuleSourceMarker: "Source file contains a server directive or server bridge import",
}

// Indicator is a dependency-based reason to flag a manifest.
type Indicator struct {
	Rule    string
	Package string
	Version string
	Reason  string
}

// Classify checks the merged dependencies of m against the indicator rules in
// priority order. ok is false when no rule matches.
func Classify(m Manifest) (ind Indicator, ok bool) {
	deps := m.Merged()
	if v, found := deps[FrameworkPackage]; found {
		return Indicator{
			Rule:    RuleFramework,
			Package: FrameworkPackage,
			Version: v,
			Reason:  fmt.Sprintf("depends on %s %s (server components framework)", FrameworkPackage, v),
		}, true
	}
	if v, found := deps[ServerBridgePackage]; found {
		return Indicator{
			Rule:    RuleServerBridge,
			Package: ServerBridgePackage,
			Version: v,
			Reason:  fmt.Sprintf("depends on %s %s", ServerBridgePackage, v),
		}, true
	}
	if v, found := deps[BaseLibrary]; found {
		if major, parsed := MajorVersion(v); parsed && major >= ReactMajorThreshold {
			return Indicator{
				Rule:    RuleReactMajor,
				Package: BaseLibrary,
				Version: v,
				Reason:  fmt.Sprintf("depends on %s %s (major >= %d)", BaseLibrary, v, ReactMajorThreshold),
			}, true
		}
	}
	return Indicator{}, false
}

// MajorVersion extracts the leading major component of a version range:
// everything before the first '.', minus leading non-digit characters such
// as ^, ~ or >=. OR-ranges and tags are not understood; "18.3.0 || 19.0.0"
// reads as 18.
func MajorVersion(v string) (int, bool) {
	head := strings.TrimSpace(v)
	if i := strings.IndexByte(head, '.'); i >= 0 {
		head = head[:i]
	}
	head = strings.TrimLeftFunc(head, func(r rune) bool { return r < '0' || r > '9' })
	if head == "" {
		return 0, false
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}
