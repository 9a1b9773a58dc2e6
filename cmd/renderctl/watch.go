package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/internal/watcher"
	"github.com/goliatone/go-renderchain/pkg/facade"
)

func newWatchCmd(c *cli) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "watch <type>",
		Short: "Render a document again whenever templates change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, err := c.app()
			if err != nil {
				return err
			}
			if err := flags.useTheme(a); err != nil {
				return err
			}
			facade.Init(a.Renderer)

			w, err := watcher.New(watcher.Config{Dirs: a.Dirs(), Logger: c.logger})
			if err != nil {
				return err
			}
			changes, err := w.Start()
			if err != nil {
				_ = w.Stop()
				return err
			}
			defer w.Stop()

			if err := renderDocument(cmd, args[0], flags); err != nil {
				c.logger.Error("render failed", zap.Error(err))
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changes:
					if err := a.Invalidate(ctx); err != nil {
						return err
					}
					if err := renderDocument(cmd, args[0], flags); err != nil {
						c.logger.Error("render failed", zap.Error(err))
					}
				}
			}
		},
	}
	flags.bind(cmd)
	return cmd
}
