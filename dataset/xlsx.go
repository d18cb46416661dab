package dataset

import (
	"github.com/xuri/excelize/v2"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// LoadXLSX reads the first sheet of an Excel workbook with the same rules as LoadCSV.
func LoadXLSX(path, label string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, cartErrors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, cartErrors.NewModelError("dataset.LoadXLSX", "workbook has no sheets", cartErrors.ErrEmptyData)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, cartErrors.Wrapf(err, "failed to read sheet %q", sheets[0])
	}

	// GetRows drops trailing empty cells; pad so short rows fail as missing values
	if len(rows) > 0 {
		width := len(rows[0])
		for i := range rows {
			for len(rows[i]) < width {
				rows[i] = append(rows[i], "")
			}
		}
	}
	return FromRecords("dataset.LoadXLSX", rows, label)
}
