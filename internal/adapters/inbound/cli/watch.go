package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/tui"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/watcher"
	"github.com/abdidvp/slopwatch/internal/domain"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Analyze files as they are saved",
		Long: "Watch the workspace and run an on-save analysis for every supported file that is written. " +
			"Diagnostics are kept across restarts in .slopwatch/cache.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			a, err := opts.newApp(cmd, root, tui.NewNotifier(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.restore(fresh)
			a.session.OnStatus(func(s domain.StatusSnapshot) {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderStatus(s))
			})

			g, gctx := errgroup.WithContext(ctx)
			w, err := a.watcher(gctx, func(out string) { fmt.Fprint(cmd.OutOrStdout(), out) })
			if err != nil {
				a.session.Close()
				return err
			}
			g.Go(func() error { return w.Run(gctx) })

			err = g.Wait()
			a.shutdown()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Discard diagnostics kept from the previous run")

	return cmd
}

// watcher builds a save watcher that feeds on-save triggers into the
// session and reloads settings when the settings file is saved. Every
// applied result is rendered through render.
func (a *app) watcher(ctx context.Context, render func(string)) (*watcher.Watcher, error) {
	handlers := watcher.Handlers{
		OnSave: func(path string) {
			if path == a.settingsFile {
				a.reloadSettings()
				return
			}
			ticket, err := a.session.Analysis.Trigger(path, domain.TriggerSave)
			if err != nil {
				if !errors.Is(err, domain.ErrNotScheduled) {
					a.logger.Printf("warn: scheduling %s: %v", path, err)
				}
				return
			}
			if render == nil {
				return
			}
			go func() {
				out, err := ticket.Wait(ctx)
				if err != nil || !out.Applied || out.Result == nil {
					return
				}
				render(tui.RenderAnalysis(path, out.Result, out.Diagnostics, a.session.Settings().Thresholds()))
			}()
		},
		OnRemove: func(path string) {
			a.session.Forget(path)
		},
	}

	w, err := watcher.New(watcher.Config{
		Root:   a.root,
		Accept: func(path string) bool {
			return path == a.settingsFile || a.session.Settings().Supports(path)
		},
	}, handlers, a.logger)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	return w, nil
}

// restore reloads the diagnostics snapshot of the previous run. fresh
// discards it instead.
func (a *app) restore(fresh bool) {
	if fresh {
		if err := a.store.Invalidate(a.root); err != nil {
			a.logger.Printf("warn: discarding diagnostics: %v", err)
		}
		return
	}
	if err := a.store.Load(a.root); err != nil {
		a.logger.Printf("warn: restoring diagnostics: %v", err)
	}
}

// shutdown stops the session and snapshots the live diagnostics.
func (a *app) shutdown() {
	a.session.Close()
	if err := a.store.Save(a.root); err != nil {
		a.logger.Printf("warn: saving diagnostics: %v", err)
	}
}
