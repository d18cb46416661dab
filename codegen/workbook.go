package codegen

import (
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// PredictionHeader is the title of the formula column written by WriteWorkbook.
const PredictionHeader = "Prediction"

// WriteWorkbook writes X to an XLSX file: a header row of feature names, one row per
// sample and a Prediction column holding the program's formula for that row.
func (p *Program) WriteWorkbook(path string, X mat.Matrix) (err error) {
	n, cols := X.Dims()
	if cols != len(p.FeatureNames) {
		return cartErrors.NewDimensionError("WriteWorkbook", len(p.FeatureNames), cols, 1)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, 0, cols+1)
	for _, name := range p.FeatureNames {
		header = append(header, name)
	}
	header = append(header, PredictionHeader)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		row := i + 2
		values := make([]interface{}, cols)
		for j := 0; j < cols; j++ {
			values[j] = X.At(i, j)
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		formula, err := p.Excel(row)
		if err != nil {
			return err
		}
		predCell, err := excelize.CoordinatesToCellName(cols+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellFormula(sheet, predCell, formula); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return cartErrors.Wrap(err, "failed to save workbook")
	}
	return nil
}
