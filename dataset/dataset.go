// Package dataset loads tabular classification data (CSV or XLSX) into gonum matrices.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/cart/preprocessing"
	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// Dataset is a binary classification table. Y holds the encoded labels as an n×1 matrix;
// Classes[k] is the original label of code k.
type Dataset struct {
	X            *mat.Dense
	Y            *mat.Dense
	FeatureNames []string
	LabelName    string
	Classes      []string
}

// Load reads path as CSV or XLSX depending on its extension.
func Load(path, label string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, label)
	case ".xlsx":
		return LoadXLSX(path, label)
	default:
		return nil, cartErrors.NewValueError("dataset.Load",
			fmt.Sprintf("unsupported file extension %q (want .csv or .xlsx)", filepath.Ext(path)))
	}
}

// LoadCSV reads a CSV file with a header row. label names the label column; an
// empty label selects the last column. All other columns must be numeric.
func LoadCSV(path, label string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cartErrors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, label)
}

// ReadCSV is LoadCSV on an already opened reader.
func ReadCSV(r io.Reader, label string) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, cartErrors.Wrap(err, "failed to parse CSV")
	}
	return FromRecords("dataset.ReadCSV", records, label)
}

// FromRecords builds a Dataset from a header row followed by data rows.
func FromRecords(op string, records [][]string, label string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, cartErrors.NewModelError(op, "missing header row", cartErrors.ErrEmptyData)
	}
	header := records[0]
	rows := records[1:]
	if len(rows) == 0 {
		return nil, cartErrors.NewModelError(op, "no data rows", cartErrors.ErrEmptyData)
	}
	if len(header) < 2 {
		return nil, cartErrors.NewValueError(op, "need at least one feature column and a label column")
	}

	labelCol := len(header) - 1
	if label != "" {
		labelCol = -1
		for j, h := range header {
			if strings.TrimSpace(h) == label {
				labelCol = j
				break
			}
		}
		if labelCol < 0 {
			return nil, cartErrors.NewValidationError("label", "column not found in header", label)
		}
	}

	featureNames := make([]string, 0, len(header)-1)
	for j, h := range header {
		if j != labelCol {
			featureNames = append(featureNames, strings.TrimSpace(h))
		}
	}

	X := mat.NewDense(len(rows), len(featureNames), nil)
	labels := make([]string, len(rows))
	for i, row := range rows {
		// row numbers are 1-based and count the header, matching what an editor shows
		line := i + 2
		if len(row) != len(header) {
			return nil, cartErrors.Newf("%s: row %d has %d columns, header has %d", op, line, len(row), len(header))
		}
		k := 0
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if j == labelCol {
				if cell == "" {
					return nil, cartErrors.Newf("%s: row %d: empty label", op, line)
				}
				labels[i] = cell
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, cartErrors.Wrapf(err, "%s: row %d column %q", op, line, featureNames[k])
			}
			X.Set(i, k, v)
			k++
		}
	}

	enc := preprocessing.NewLabelEncoder()
	codes, err := enc.FitTransform(labels)
	if err != nil {
		return nil, err
	}
	classes := enc.Classes()
	if len(classes) != 2 {
		return nil, cartErrors.NewValidationError(header[labelCol], "exactly two classes are required", classes)
	}

	return &Dataset{
		X:            X,
		Y:            mat.NewDense(len(codes), 1, codes),
		FeatureNames: featureNames,
		LabelName:    strings.TrimSpace(header[labelCol]),
		Classes:      classes,
	}, nil
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int {
	r, _ := d.X.Dims()
	return r
}

// Features returns the number of feature columns.
func (d *Dataset) Features() int {
	_, c := d.X.Dims()
	return c
}

// Row returns a copy of the i-th feature row.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.X)
}

// Subset returns a new Dataset holding the given rows in the given order.
// An empty index list yields an empty Dataset.
func (d *Dataset) Subset(indices []int) *Dataset {
	out := &Dataset{
		X:            &mat.Dense{},
		Y:            &mat.Dense{},
		FeatureNames: append([]string(nil), d.FeatureNames...),
		LabelName:    d.LabelName,
		Classes:      append([]string(nil), d.Classes...),
	}
	if len(indices) == 0 {
		return out
	}

	out.X = mat.NewDense(len(indices), d.Features(), nil)
	out.Y = mat.NewDense(len(indices), 1, nil)
	for k, i := range indices {
		out.X.SetRow(k, d.X.RawRowView(i))
		out.Y.Set(k, 0, d.Y.At(i, 0))
	}
	return out
}

// Sample draws n distinct rows without replacement. The same seed always yields
// the same rows.
func (d *Dataset) Sample(n int, seed uint64) (*Dataset, error) {
	if n < 1 || n > d.Rows() {
		return nil, cartErrors.NewValidationError("n", fmt.Sprintf("must be in [1, %d]", d.Rows()), n)
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	return d.Subset(rng.Perm(d.Rows())[:n]), nil
}
