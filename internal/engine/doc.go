// Package engine contains the core detection pipeline of rscscan. It walks
// directory trees with a fixed exclusion policy, locates package.json
// manifests, analyzes each one and aggregates verdicts into a report. This
// package is internal; external consumers should use the stable facade in
// pkg/core.
package engine
