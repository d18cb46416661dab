package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoic/cart/sklearn/tree"
)

func (c *CLI) newRulesCommand() *cobra.Command {
	var (
		modelPath string
		decimals  int
		opts      tree.TextOptions
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the decision rules of a saved model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dt, err := loadTree(c.modelPath(modelPath))
			if err != nil {
				return err
			}
			opts.Decimals = &decimals
			text, err := tree.ExportText(dt, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "saved model (default from config)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 10, "truncate branches deeper than this")
	cmd.Flags().IntVar(&decimals, "decimals", 2, "threshold decimals")
	cmd.Flags().BoolVar(&opts.ShowWeights, "show-weights", false, "print class counts at leaves")
	return cmd
}
