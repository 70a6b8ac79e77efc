package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/tui"
	"github.com/abdidvp/slopwatch/internal/domain"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one file",
		Long:  "Run the analyzer on a single file and print its score, metrics and findings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd, ".", tui.NewNotifier(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.session.Close()

			out, err := a.session.Analysis.Analyze(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrNotScheduled) {
				return fmt.Errorf("%s was not analyzed: %w", args[0], err)
			}
			if errors.Is(err, domain.ErrCancelled) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: superseded by a newer request\n", args[0])
				return nil
			}
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling outcome: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderAnalysis(out.Request.Subject.Path, out.Result, out.Diagnostics, a.settings.Thresholds()))
			}

			if ciMode {
				thresholds := a.settings.Thresholds()
				if thresholds.Classify(out.Result.DeficitScore) == domain.BucketError {
					return fmt.Errorf("score %s is at or above the fail threshold %g",
						domain.FormatScore(out.Result.DeficitScore), thresholds.Fail)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "Exit non-zero when the score reaches the fail threshold")

	return cmd
}
