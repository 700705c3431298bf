// Package rscscan provides the command-line interface for rscscan. It
// configures subcommands (scan, compare, config, etc.), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/rscscan/rscscan/cmd/rscscan"
//	func main() { rscscan.Execute() }
package rscscan
