// Package viz draws the diagnostic charts of the workflow with gonum/plot.
package viz

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/sklearn/model_selection"
	"github.com/ezoic/cart/sklearn/tree"
)

var (
	trainColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	testColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// PlotImportance draws the num most important features as a horizontal bar chart,
// largest on top. ranking must be sorted by decreasing importance, as returned by
// RankFeatureImportances. num <= 0 plots every feature.
func PlotImportance(ranking []tree.FeatureImportance, num int, path string) error {
	if len(ranking) == 0 {
		return cartErrors.NewModelError("viz.PlotImportance", "no features", cartErrors.ErrEmptyData)
	}
	if num <= 0 || num > len(ranking) {
		num = len(ranking)
	}

	// plot y positions grow upwards, so the largest value goes last
	values := make(plotter.Values, num)
	names := make([]string, num)
	for i := 0; i < num; i++ {
		fi := ranking[num-1-i]
		values[i] = fi.Value
		names[i] = fi.Name
	}

	p := plot.New()
	p.Title.Text = "Features"
	p.X.Label.Text = "Importance"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = trainColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	height := vg.Length(num)*0.4*vg.Inch + 1.5*vg.Inch
	return save(p, 8*vg.Inch, height, path)
}

// PlotValidationCurve draws the mean training and validation scores of curve against
// the swept parameter values.
func PlotValidationCurve(curve *model_selection.CurveResult, modelName, path string) error {
	if curve == nil || len(curve.Values) == 0 {
		return cartErrors.NewModelError("viz.PlotValidationCurve", "empty curve", cartErrors.ErrEmptyData)
	}

	xs, numeric := axisValues(curve.Values)
	train := points(xs, curve.MeanTrain())
	test := points(xs, curve.MeanTest())

	p := plot.New()
	p.Title.Text = "Validation Curve for " + modelName
	p.X.Label.Text = curve.Param
	p.Y.Label.Text = curve.Scoring
	p.Legend.Top = true

	for _, s := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{
		{"Training Score", train, trainColor},
		{"Validation Score", test, testColor},
	} {
		line, scatter, err := plotter.NewLinePoints(s.pts)
		if err != nil {
			return err
		}
		line.Color = s.c
		line.Width = vg.Points(2)
		scatter.Color = s.c
		p.Add(line, scatter)
		p.Legend.Add(s.name, line, scatter)
	}

	if !numeric {
		labels := make([]string, len(curve.Values))
		for i, v := range curve.Values {
			labels[i] = fmt.Sprint(v)
		}
		p.NominalX(labels...)
	}
	return save(p, 8*vg.Inch, 6*vg.Inch, path)
}

// axisValues converts numeric parameter values to x coordinates. Non-numeric values
// are placed at their index.
func axisValues(values []any) ([]float64, bool) {
	xs := make([]float64, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case int:
			xs[i] = float64(t)
		case int64:
			xs[i] = float64(t)
		case float64:
			xs[i] = t
		default:
			for j := range xs {
				xs[j] = float64(j)
			}
			return xs, false
		}
	}
	return xs, true
}

func points(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cartErrors.Wrap(err, "failed to create output directory")
		}
	}
	if err := p.Save(w, h, path); err != nil {
		return cartErrors.Wrapf(err, "failed to save plot %s", path)
	}
	return nil
}
