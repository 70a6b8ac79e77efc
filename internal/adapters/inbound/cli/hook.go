package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/tui"
)

func newHookCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Git hook commands",
	}
	cmd.AddCommand(newHookInstallCmd(opts))
	return cmd
}

func newHookInstallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install [root]",
		Short: "Install the analyzer's pre-commit hook",
		Long:  "Ask the analyzer to install its git pre-commit hook in the repository containing root.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			a, err := opts.newApp(cmd, root, tui.NewNotifier(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.session.Close()

			if !gitinfo.New().IsGitRepo(a.root) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: %s is not inside a git repository\n", a.root)
			}

			outcome, err := a.session.Hooks.Install(cmd.Context(), a.root)
			if err != nil {
				return err
			}
			if outcome.Output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Output)
			}
			return nil
		},
	}
}
