package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ezoic/cart/internal/testutil"
	cartErrors "github.com/ezoic/cart/pkg/errors"
)

const smallCSV = `Glucose,BMI,Outcome
148,33.6,1
85,26.6,0
183,23.3,1
89,28.1,0
`

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(smallCSV), "Outcome")
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Rows())
	assert.Equal(t, 2, ds.Features())
	assert.Equal(t, []string{"Glucose", "BMI"}, ds.FeatureNames)
	assert.Equal(t, "Outcome", ds.LabelName)
	assert.Equal(t, []string{"0", "1"}, ds.Classes)
	assert.Equal(t, []float64{148, 33.6}, ds.Row(0))
	assert.Equal(t, []float64{1, 0, 1, 0}, ds.Y.RawMatrix().Data)
}

func TestReadCSVLabelInMiddle(t *testing.T) {
	data := "a,label,b\n1,yes,2\n3,no,4\n"
	ds, err := ReadCSV(strings.NewReader(data), "label")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ds.FeatureNames)
	assert.Equal(t, []float64{3, 4}, ds.Row(1))
	assert.Equal(t, []string{"no", "yes"}, ds.Classes)
	assert.Equal(t, []float64{1, 0}, ds.Y.RawMatrix().Data)
}

func TestReadCSVDefaultsToLastColumn(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(smallCSV), "")
	require.NoError(t, err)
	assert.Equal(t, "Outcome", ds.LabelName)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		label   string
		wantMsg string
	}{
		{"unknown label", smallCSV, "Missing", "column not found"},
		{"non numeric", "a,y\n1,0\nx,1\n", "y", `row 3 column "a"`},
		{"empty cell", "a,y\n1,0\n,1\n", "y", `row 3 column "a"`},
		{"three classes", "a,y\n1,0\n2,1\n3,2\n", "y", "exactly two classes"},
		{"one class", "a,y\n1,0\n2,0\n", "y", "exactly two classes"},
		{"ragged", "a,b,y\n1,2,0\n1,1\n", "y", "failed to parse CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data), tt.label)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,y\n"), "y")
	assert.ErrorIs(t, err, cartErrors.ErrEmptyData)

	_, err = ReadCSV(strings.NewReader(""), "y")
	assert.ErrorIs(t, err, cartErrors.ErrEmptyData)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diabetes.csv")
	require.NoError(t, testutil.WriteDiabetesCSV(path, 120, 3))

	ds, err := Load(path, testutil.LabelName)
	require.NoError(t, err)

	X, y := testutil.Diabetes(120, 3)
	assert.Equal(t, testutil.FeatureNames, ds.FeatureNames)
	assert.Equal(t, X.RawMatrix().Data, ds.X.RawMatrix().Data)
	assert.Equal(t, y.RawMatrix().Data, ds.Y.RawMatrix().Data)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), "y")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to open file")
}

func TestLoadUnknownExtension(t *testing.T) {
	_, err := Load("data.parquet", "y")
	var valErr *cartErrors.ValueError
	assert.ErrorAs(t, err, &valErr)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Glucose", "BMI", "Outcome"},
		{148, 33.6, 1},
		{85, 26.6, 0},
		{183, 23.3, 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(path, "Outcome")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []float64{85, 26.6}, ds.Row(1))
	assert.Equal(t, []float64{1, 0, 1}, ds.Y.RawMatrix().Data)
}

func TestSubsetAndSample(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(smallCSV), "Outcome")
	require.NoError(t, err)

	sub := ds.Subset([]int{2, 0})
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, []float64{183, 23.3}, sub.Row(0))
	assert.Equal(t, []float64{1, 1}, sub.Y.RawMatrix().Data)

	empty := ds.Subset(nil)
	assert.Equal(t, 0, empty.Rows())

	a, err := ds.Sample(3, 7)
	require.NoError(t, err)
	b, err := ds.Sample(3, 7)
	require.NoError(t, err)
	assert.Equal(t, a.X.RawMatrix().Data, b.X.RawMatrix().Data)
	assert.Equal(t, 3, a.Rows())

	_, err = ds.Sample(5, 7)
	var vErr *cartErrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
