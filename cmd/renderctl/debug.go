package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newDebugCmd(c *cli) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "debug <type>",
		Short: "Show every template file checked for a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			trace, err := a.Debug(cmd.Context(), args[0], variant)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), trace)
			return err
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "template variant")
	return cmd
}
