package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "slopwatch",
		Short: "Keep AI slop out of your editor",
		Long: "slopwatch runs the slop detector on the files you touch, turns its verdict into " +
			"diagnostics and a live status, and serves them to your editor over MCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.settingsFile, "settings", "", "Settings file (defaults to .slopwatch.yaml in the workspace)")
	flags.StringVar(&opts.analyzerConfig, "analyzer-config", "", "Config file forwarded to the analyzer as --config")
	flags.StringVar(&opts.executable, "executable", "", "Analyzer executable (overrides settings)")
	flags.Float64Var(&opts.warn, "warn", 0, "Warning threshold (overrides settings)")
	flags.Float64Var(&opts.fail, "fail", 0, "Failure threshold (overrides settings)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log orchestration details to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newWorkspaceCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newHookCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newInitCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show slopwatch version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "slopwatch %s (%s)\n", version, commit)
			return nil
		},
	}
}
