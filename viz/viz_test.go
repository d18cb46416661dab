package viz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/cart/internal/testutil"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/sklearn/model_selection"
	"github.com/ezoic/cart/sklearn/tree"
)

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestPlotImportance(t *testing.T) {
	ranking := []tree.FeatureImportance{
		{Name: "Glucose", Value: 0.5},
		{Name: "BMI", Value: 0.3},
		{Name: "Age", Value: 0.2},
	}
	path := filepath.Join(t.TempDir(), "nested", "importance.png")
	require.NoError(t, PlotImportance(ranking, 2, path))
	assertPNG(t, path)

	err := PlotImportance(nil, 5, path)
	assert.ErrorIs(t, err, cartErrors.ErrEmptyData)
}

func TestPlotValidationCurve(t *testing.T) {
	X, y := testutil.Diabetes(90, 2)
	curve, err := model_selection.ValidationCurve(
		tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17)), X, y,
		"max_depth", model_selection.IntRange(1, 4), model_selection.WithCV(3))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "curve_max_depth.png")
	require.NoError(t, PlotValidationCurve(curve, "DecisionTreeClassifier", path))
	assertPNG(t, path)

	err = PlotValidationCurve(&model_selection.CurveResult{}, "x", path)
	assert.ErrorIs(t, err, cartErrors.ErrEmptyData)
}

func TestAxisValues(t *testing.T) {
	xs, ok := axisValues([]any{1, 2.5, int64(4)})
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2.5, 4}, xs)

	xs, ok = axisValues([]any{"gini", "entropy"})
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 1}, xs)
}
