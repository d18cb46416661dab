package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

func vec(v ...float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

// captureWarnings collects warnings emitted during the test.
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	cartErrors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() {
		cartErrors.SetWarningHandler(func(error) {})
	})
	return &got
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		score []float64
		want  float64
	}{
		{"perfect", []float64{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1.0},
		{"inverted", []float64{0, 0, 1, 1}, []float64{0.9, 0.8, 0.2, 0.1}, 0.0},
		{"partial", []float64{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		{"ties", []float64{0, 1}, []float64{0.5, 0.5}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUC(vec(tt.yTrue...), vec(tt.score...))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAUCSingleClassWarns(t *testing.T) {
	warnings := captureWarnings(t)

	got, err := AUC(vec(1, 1, 1), vec(0.2, 0.5, 0.9))
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)
	require.Len(t, *warnings, 1)

	var w *cartErrors.UndefinedMetricWarning
	require.ErrorAs(t, (*warnings)[0], &w)
	assert.Equal(t, "roc_auc", w.Metric)
}

func TestBinaryLogLoss(t *testing.T) {
	got, err := BinaryLogLoss(vec(1, 0), vec(0.8, 0.2))
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(0.8), got, 1e-9)

	_, err = BinaryLogLoss(vec(1, 0), vec(0.8))
	assert.Error(t, err)
}

func TestAccuracy(t *testing.T) {
	got, err := Accuracy(vec(0, 1, 1, 0, 1), vec(0, 1, 0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.8, got)

	_, err = Accuracy(vec(0, 1), vec(0))
	var dimErr *cartErrors.DimensionError
	assert.ErrorAs(t, err, &dimErr)

	_, err = Accuracy(nil, vec(0))
	assert.Error(t, err)
}

func TestConfusionMatrix(t *testing.T) {
	cm, err := ConfusionMatrix(vec(0, 0, 1, 1, 1), vec(0, 1, 1, 1, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 2}, cm.RawMatrix().Data)

	// explicit labels fix the order and drop unknown values
	cm, err = ConfusionMatrix(vec(0, 0, 1, 2), vec(0, 1, 1, 2), []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 1}, cm.RawMatrix().Data)
}

func TestPrecisionRecallFScoreSupport(t *testing.T) {
	p, r, f, s, err := PrecisionRecallFScoreSupport(vec(0, 0, 1, 1, 1), vec(0, 1, 1, 1, 0), nil)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0.5, 2.0 / 3.0}, p, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 2.0 / 3.0}, r, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 2.0 / 3.0}, f, 1e-12)
	assert.Equal(t, []int{2, 3}, s)
}

func TestBinaryScores(t *testing.T) {
	yTrue := vec(0, 1, 1, 1, 0, 0)
	yPred := vec(0, 1, 0, 1, 1, 0)

	p, err := Precision(yTrue, yPred, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)

	r, err := Recall(yTrue, yPred, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, r, 1e-12)

	f, err := F1Score(yTrue, yPred, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, f, 1e-12)
}

func TestBinaryScoresCountOtherLabelsAsNegative(t *testing.T) {
	yTrue := vec(0, 0, 1, 1, 1, 0, 1)
	yPred := vec(1, 0, 1, 0, 1, 0, 0)

	// tp=2 fp=1 fn=2
	p, err := Precision(yTrue, yPred, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)
	r, err := Recall(yTrue, yPred, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r, 1e-12)
	f, err := F1Score(yTrue, yPred, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/7.0, f, 1e-12)

	// same numbers as the per-class row of label 1
	pc, rc, fc, _, err := PrecisionRecallFScoreSupport(yTrue, yPred, nil)
	require.NoError(t, err)
	assert.InDelta(t, pc[1], p, 1e-12)
	assert.InDelta(t, rc[1], r, 1e-12)
	assert.InDelta(t, fc[1], f, 1e-12)

	// a third label in the data is still a negative for label 1
	f, err = F1Score(vec(2, 1, 1, 0), vec(1, 1, 2, 0), 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-12)
}

func TestZeroDivisionWarns(t *testing.T) {
	warnings := captureWarnings(t)

	// the positive class is never predicted
	p, err := Precision(vec(0, 1, 1), vec(0, 0, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	f, err := F1Score(vec(0, 1, 1), vec(0, 0, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	require.NotEmpty(t, *warnings)
	var w *cartErrors.UndefinedMetricWarning
	require.ErrorAs(t, (*warnings)[0], &w)
	assert.Equal(t, "precision", w.Metric)
	assert.Equal(t, 0.0, w.Result)
}

func TestClassificationReport(t *testing.T) {
	rep, err := ClassificationReport(vec(0, 0, 1, 1, 1), vec(0, 1, 1, 1, 0), ReportOptions{
		TargetNames: []string{"healthy", "diabetic"},
	})
	require.NoError(t, err)

	require.Len(t, rep.Classes, 2)
	assert.Equal(t, "healthy", rep.Classes[0].Name)
	assert.Equal(t, 3, rep.Classes[1].Support)
	assert.InDelta(t, 0.6, rep.Accuracy, 1e-12)
	assert.InDelta(t, (0.5+2.0/3.0)/2, rep.MacroAvg.F1, 1e-12)
	assert.InDelta(t, 0.6, rep.WeightedAvg.Recall, 1e-12)
	assert.Equal(t, 5, rep.WeightedAvg.Support)

	out := rep.String()
	assert.Contains(t, out, "     healthy       0.50      0.50      0.50         2\n")
	assert.Contains(t, out, "    accuracy                           0.60         5\n")

	_, err = ClassificationReport(vec(0, 1), vec(0, 1), ReportOptions{TargetNames: []string{"only"}})
	var dimErr *cartErrors.DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestClassificationReportDigits(t *testing.T) {
	rep, err := ClassificationReport(vec(0, 1, 1), vec(0, 1, 0), ReportOptions{Digits: 4})
	require.NoError(t, err)
	assert.Contains(t, rep.String(), "    0.6667")
}
