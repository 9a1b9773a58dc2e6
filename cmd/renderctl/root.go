package main

import (
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/internal/app"
	"github.com/goliatone/go-renderchain/internal/config"
	"github.com/goliatone/go-renderchain/internal/logging"
)

// cli carries state shared by the subcommands.
type cli struct {
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "renderctl",
		Short:         "Render documents with project templates",
		Long:          `renderctl looks up templates for a document type in the custom, template and package directories of a project and renders the first match.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: "+config.DefaultPath+")")

	root.AddCommand(
		newRenderCmd(c),
		newDebugCmd(c),
		newInstallCmd(c),
		newWatchCmd(c),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// loadForInstall starts from the defaults when the config file does not exist
// yet.
func (c *cli) loadForInstall() error {
	if c.cfgFile != "" {
		if _, err := os.Stat(c.cfgFile); errors.Is(err, fs.ErrNotExist) {
			c.cfg = config.Defaults()
			logger, err := logging.New(c.cfg.Log)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		}
	}
	return c.load()
}

func (c *cli) app() (*app.App, error) {
	return app.Build(c.cfg, c.logger)
}
