package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-renderchain/internal/install"
)

func newInstallCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write a configuration and create the custom templates directory",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.loadForInstall()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := install.Run(cmd.Context(), install.SurveyDriver(), install.Options{
				ConfigPath: c.cfgFile,
				Yes:        yes,
				Defaults:   c.cfg,
				Logger:     c.logger,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Wrote %s\nCustom templates go in %s\n", result.ConfigPath, result.CustomDir)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the defaults without prompting")
	return cmd
}
