package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/cart/internal/workflow"
)

func (c *CLI) newPredictCommand() *cobra.Command {
	var (
		modelPath string
		rows      []string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict rows with a saved model",
		Args:  cobra.NoArgs,
		Example: `  cart predict --row 12,13,20,23,4,55,12,7
  cart predict --model cart_final.gob --row 6,148,70,35,0,30,0.62,50 --row 1,85,66,29,0,26.6,0.351,31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dt, err := loadTree(c.modelPath(modelPath))
			if err != nil {
				return err
			}
			X := workflow.ExampleRows
			if len(rows) > 0 {
				if X, err = parseRows(rows); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			classes := dt.Classes()
			for _, row := range X {
				pred, err := dt.PredictRow(row)
				if err != nil {
					return err
				}
				proba, err := dt.PredictProba(mat.NewDense(1, len(row), row))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%v -> %v", row, pred)
				for j, cls := range classes {
					fmt.Fprintf(out, "  p(%v)=%.4f", cls, proba.At(0, j))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "saved model (default from config)")
	cmd.Flags().StringArrayVarP(&rows, "row", "r", nil, "comma-separated feature values; repeatable (default: the two example rows)")
	return cmd
}
