package rscscan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ciTemplates maps a provider to the pipeline file it uses and its content.
// Exit status 2 from the scan fails the job when packages are flagged.
var ciTemplates = map[string]struct{ path, content string }{
	"github": {
		path: ".github/workflows/rscscan.yml",
		content: `name: rscscan
on: [push, pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25'
      - run: go install github.com/rscscan/rscscan@latest
      - run: rscscan scan --sarif . > rscscan.sarif
      - uses: github/codeql-action/upload-sarif@v3
        if: always()
        with:
          sarif_file: rscscan.sarif
`,
	},
	"gitlab": {
		path: ".gitlab-ci.yml",
		content: `stages: [scan]
rscscan:
  stage: scan
  image: golang:1.25
  script:
    - go install github.com/rscscan/rscscan@latest
    - rscscan scan --json . | tee rscscan-report.json
  artifacts:
    when: always
    paths:
      - rscscan-report.json
`,
	},
	"bitbucket": {
		path: "bitbucket-pipelines.yml",
		content: `pipelines:
  default:
    - step:
        name: rscscan
        image: golang:1.25
        script:
          - go install github.com/rscscan/rscscan@latest
          - rscscan scan --json . | tee rscscan-report.json
        artifacts:
          - rscscan-report.json
`,
	},
}

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, ok := ciTemplates[provider]
			if !ok {
				return fmt.Errorf("unknown --provider %q. Supported: github, gitlab, bitbucket", provider)
			}
			if err := os.MkdirAll(filepath.Dir(tpl.path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(tpl.path, []byte(tpl.content), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", tpl.path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}
