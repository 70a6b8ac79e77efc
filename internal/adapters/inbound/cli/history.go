package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/history"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/tui"
	"github.com/abdidvp/slopwatch/internal/domain/views"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		workspace  bool
	)

	cmd := &cobra.Command{
		Use:   "history <file>",
		Short: "Show the score history of a file",
		Long: "Ask the analyzer for the recorded history of a file, newest first. " +
			"With --workspace, show the recorded workspace runs of the given root instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}

			var (
				view  views.HistoryView
				title string
			)
			if workspace {
				if target == "" {
					target = "."
				}
				runs, err := history.NewWorkspaceLog().Load(target)
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				view, title = views.History(history.Entries(runs)), "Workspace history"
			} else {
				a, err := opts.newApp(cmd, ".", tui.NewNotifier(cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				defer a.session.Close()

				view, err = a.session.History.Show(cmd.Context(), target)
				if err != nil {
					return err
				}
				title = "History of " + view.Path
			}

			if jsonOutput {
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling history: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(title, view))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&workspace, "workspace", false, "Show workspace runs instead of a file's history")

	return cmd
}
