package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/cart/codegen"
	"github.com/ezoic/cart/core/model"
	"github.com/ezoic/cart/internal/workflow"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/sklearn/tree"
)

func (c *CLI) newExportCommand() *cobra.Command {
	var (
		modelPath string
		format    string
		funcName  string
		table     string
		row       int
		image     string
		workbook  string
		rows      []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved model as code, SQL, a spreadsheet formula, a Graphviz graph or scikit-learn JSON",
		Args:  cobra.NoArgs,
		Example: `  cart export --format python
  cart export --format sql --table diabetes
  cart export --format excel --workbook rules.xlsx
  cart export --format dot --image cart_final.svg
  cart export --format sklearn > cart_sklearn.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dt, err := loadTree(c.modelPath(modelPath))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch format {
			case "sklearn":
				params, err := dt.ToSKLearn()
				if err != nil {
					return err
				}
				return model.ExportSKLearnModel("DecisionTreeClassifier", params, out)
			case "dot":
				dot, err := tree.ExportGraphviz(dt, tree.GraphvizOptions{Filled: true})
				if err != nil {
					return err
				}
				if image != "" {
					return tree.RenderGraph(dot, imageFormat(image), image)
				}
				fmt.Fprintln(out, dot)
				return nil
			}

			prog, err := codegen.Compile(dt)
			if err != nil {
				return err
			}
			switch format {
			case "go":
				fmt.Fprint(out, prog.Go(funcName))
			case "python":
				fmt.Fprintln(out, prog.Python())
			case "sql":
				fmt.Fprintln(out, prog.SQL(table))
			case "excel":
				formula, err := prog.Excel(row)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formula)
			default:
				return cartErrors.NewValidationError("format", "must be go, python, sql, excel, dot or sklearn", format)
			}

			if workbook != "" {
				X := workflow.ExampleRows
				if len(rows) > 0 {
					if X, err = parseRows(rows); err != nil {
						return err
					}
				}
				m := mat.NewDense(len(X), len(X[0]), nil)
				for i, r := range X {
					if len(r) != len(X[0]) {
						return cartErrors.NewDimensionError("export", len(X[0]), len(r), 1)
					}
					m.SetRow(i, r)
				}
				return prog.WriteWorkbook(workbook, m)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&modelPath, "model", "m", "", "saved model (default from config)")
	flags.StringVarP(&format, "format", "f", "python", "go, python, sql, excel, dot or sklearn")
	flags.StringVar(&funcName, "func", "predictWithRules", "function name for --format go")
	flags.StringVar(&table, "table", "diabetes", "table name for --format sql")
	flags.IntVar(&row, "excel-row", 2, "spreadsheet row the formula reads for --format excel")
	flags.StringVar(&image, "image", "", "render the graph to this file for --format dot (png or svg by extension)")
	flags.StringVar(&workbook, "workbook", "", "also write an XLSX workbook evaluating the rules on --row values")
	flags.StringArrayVarP(&rows, "row", "r", nil, "comma-separated feature values for --workbook; repeatable (default: the two example rows)")
	return cmd
}

func imageFormat(path string) string {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return ext
	}
	return "png"
}
