package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	mcpadapter "github.com/abdidvp/slopwatch/internal/adapters/inbound/mcp"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		root  string
		watch bool
		fresh bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the slopwatch MCP server (stdio)",
		Long: "Start the slopwatch MCP server on stdin/stdout. The editor reports saves and edits " +
			"through tools and reads diagnostics and status through resources.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				root = "."
			}

			bridge := mcpadapter.NewBridge(opts.logger(cmd, "mcp"))
			a, err := opts.newApp(cmd, root, bridge)
			if err != nil {
				return err
			}
			a.restore(fresh)

			s := mcpadapter.NewSlopwatchMCPServer(a.session, a.root, bridge)
			stdio := server.NewStdioServer(s)
			stdio.SetErrorLogger(opts.logger(cmd, "stdio"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				// The editor closing stdin ends the watcher too.
				defer cancel()
				return stdio.Listen(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
			})
			if watch {
				w, err := a.watcher(gctx, nil)
				if err != nil {
					a.shutdown()
					return err
				}
				g.Go(func() error { return w.Run(gctx) })
			}

			err = g.Wait()
			a.shutdown()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Workspace root (defaults to current working directory)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Also analyze files saved outside the editor")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Discard diagnostics kept from the previous run")

	return cmd
}
