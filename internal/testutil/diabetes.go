// Package testutil generates deterministic diabetes-shaped data for tests.
package testutil

import (
	"encoding/csv"
	"math"
	"math/rand/v2"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// FeatureNames are the Pima diabetes feature columns, in file order.
var FeatureNames = []string{
	"Pregnancies", "Glucose", "BloodPressure", "SkinThickness",
	"Insulin", "BMI", "DiabetesPedigreeFunction", "Age",
}

// LabelName is the Pima diabetes label column.
const LabelName = "Outcome"

// Diabetes returns n rows of synthetic data with the Pima columns and a noisy
// binary outcome driven mostly by Glucose, BMI and Age. The same seed always
// yields the same data.
func Diabetes(n int, seed uint64) (X, y *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	X = mat.NewDense(n, len(FeatureNames), nil)
	y = mat.NewDense(n, 1, nil)

	for i := 0; i < n; i++ {
		pregnancies := math.Min(17, math.Floor(rng.ExpFloat64()*3.8))
		glucose := clip(math.Round(120+rng.NormFloat64()*31), 44, 199)
		bloodPressure := clip(math.Round(69+rng.NormFloat64()*12), 24, 122)
		skin := clip(math.Round(20+rng.NormFloat64()*16), 0, 99)
		insulin := 0.0
		if rng.Float64() < 0.5 {
			insulin = clip(math.Round(155+rng.NormFloat64()*110), 14, 846)
		}
		bmi := clip(math.Round((32+rng.NormFloat64()*7)*10)/10, 18.2, 67.1)
		dpf := clip(math.Round((0.08+rng.ExpFloat64()*0.39)*1000)/1000, 0.078, 2.42)
		age := clip(math.Floor(21+rng.ExpFloat64()*12), 21, 81)

		logit := -9.2 + 0.038*glucose + 0.085*bmi + 0.03*age + 0.11*pregnancies + 0.9*dpf
		p := 1 / (1 + math.Exp(-logit))
		outcome := 0.0
		if rng.Float64() < p {
			outcome = 1
		}

		X.SetRow(i, []float64{pregnancies, glucose, bloodPressure, skin, insulin, bmi, dpf, age})
		y.Set(i, 0, outcome)
	}
	return X, y
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// WriteDiabetesCSV writes Diabetes(n, seed) to path with a header row and the
// label as the last column.
func WriteDiabetesCSV(path string, n int, seed uint64) error {
	X, y := Diabetes(n, seed)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := append(append([]string{}, FeatureNames...), LabelName)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i := 0; i < n; i++ {
		for j := range FeatureNames {
			record[j] = strconv.FormatFloat(X.At(i, j), 'f', -1, 64)
		}
		record[len(FeatureNames)] = strconv.FormatFloat(y.At(i, 0), 'f', -1, 64)
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
