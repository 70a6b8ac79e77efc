package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/history"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/tui"
	"github.com/abdidvp/slopwatch/internal/domain/views"
)

func newWorkspaceCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOutput  bool
		showHistory bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "workspace [root]",
		Short: "Analyze the whole workspace",
		Long:  "Run the analyzer in project mode and print the aggregate score. Each run is recorded under .slopwatch/history.",
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

			ticket, err := a.session.Workspace.Trigger(a.root)
			if err != nil {
				return err
			}

			if !quiet && !jsonOutput {
				stop := spin(cmd, ticket.Done())
				defer stop()
			}

			out, err := ticket.Wait(cmd.Context())
			if err == nil {
				err = out.Err
			}
			if err != nil {
				return fmt.Errorf("workspace analysis failed: %w", err)
			}

			wlog := history.NewWorkspaceLog()
			run := history.WorkspaceRun{Timestamp: time.Now().Format(time.RFC3339), Summary: *out.Workspace}
			if err := wlog.Save(a.root, run); err != nil {
				a.logger.Printf("warn: recording workspace run: %v", err)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(out.Workspace, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling summary: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderWorkspace(*out.Workspace))

			if showHistory {
				recorded, err := wlog.Load(a.root)
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory("Workspace history", views.History(history.Entries(recorded))))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showHistory, "history", false, "Show recorded workspace runs")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the progress spinner")

	return cmd
}

// spin shows a spinner on stderr until done is closed or stop is called.
func spin(cmd *cobra.Command, done <-chan struct{}) (stop func()) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Analyzing workspace"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	quit := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-quit:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(quit)
		<-finished
		_ = bar.Finish()
	}
}
