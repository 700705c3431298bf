// Package core provides a small, stable facade over rscscan's internal engine
// for external integrations. It re-exports a narrow API surface so other
// tools can depend on a stable import path without importing internals.
//
// Example:
//
//	root, err := core.TreeRoot(".")
//	if err != nil { /* handle */ }
//	rep, err := core.Scan(ctx, core.Config{Roots: []core.Root{root}})
//	if err != nil { /* handle */ }
//	_ = core.MarshalReport(os.Stdout, rep)
//	os.Exit(core.ExitCode(rep))
package core
