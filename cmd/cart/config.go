package main

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}
