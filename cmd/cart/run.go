package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoic/cart/internal/workflow"
)

func (c *CLI) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis: baseline, holdout, cross-validation, grid search, final model and exports",
		Args:  cobra.NoArgs,
		Example: `  cart run
  cart run --config cart.yaml --log-level debug
  CART_DATA_PATH=data/pima.xlsx cart run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner := workflow.New(c.cfg,
				workflow.WithOutput(cmd.OutOrStdout()),
				workflow.WithProgressWriter(cmd.ErrOrStderr()),
			)
			res, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s finished, %d artifacts written\n", res.RunID, len(res.Artifacts))
			return nil
		},
	}
}
