package rscscan

import (
	"io"

	"github.com/spf13/cobra"
)

var completionGenerators = map[string]func(w io.Writer) error{
	"bash":       func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
	"zsh":        func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
	"fish":       func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
	"powershell": func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
}

func init() {
	cmd := &cobra.Command{
		Use:       "completion <bash|zsh|fish|powershell>",
		Short:     "Print a shell completion script",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionGenerators[args[0]](cmd.OutOrStdout())
		},
		Example: `  rscscan completion bash > /etc/bash_completion.d/rscscan
  rscscan completion zsh > "${fpath[1]}/_rscscan"
  rscscan completion fish > ~/.config/fish/completions/rscscan.fish`,
	}
	rootCmd.AddCommand(cmd)
}
