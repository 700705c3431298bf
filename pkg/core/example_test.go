package core_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rscscan/rscscan/pkg/core"
)

// ExampleScan demonstrates how to scan a directory tree.
func ExampleScan() {
	root, err := core.TreeRoot(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad root: %v\n", err)
		return
	}
	rep, err := core.Scan(context.Background(), core.Config{Roots: []core.Root{root}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return
	}
	for _, v := range rep.Verdicts {
		fmt.Printf("%s vulnerable=%v %s\n", v.Target.Label, v.Vulnerable, v.Reason)
	}
}

// ExampleWordPressRoots scans every plugin and theme with a deadline.
func ExampleWordPressRoots() {
	roots, err := core.WordPressRoots("/var/www/html/wp-content")
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad wp-content: %v\n", err)
		return
	}
	res, err := core.ScanWithStats(context.Background(), core.Config{
		Roots:   roots,
		Threads: 4,
		Timeout: 30 * time.Second,
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Analyzed %d targets in %s, %d possibly vulnerable\n", res.Targets, res.Duration, res.Report.VulnerableCount)
	if res.Partial {
		fmt.Println("deadline reached before all targets were analyzed")
	}
}
