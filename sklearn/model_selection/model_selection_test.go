package model_selection_test

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/cart/internal/testutil"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	ms "github.com/ezoic/cart/sklearn/model_selection"
	"github.com/ezoic/cart/sklearn/tree"
)

func checkPartition(t *testing.T, folds []ms.Fold, n int) {
	t.Helper()
	seen := make([]int, n)
	for _, f := range folds {
		assert.True(t, sort.IntsAreSorted(f.Test), "test indices must be sorted")
		assert.True(t, sort.IntsAreSorted(f.Train), "train indices must be sorted")
		assert.Equal(t, n, len(f.Train)+len(f.Test))
		for _, i := range f.Test {
			seen[i]++
		}
	}
	for i, c := range seen {
		assert.Equal(t, 1, c, "sample %d must be tested exactly once", i)
	}
}

func TestKFold(t *testing.T) {
	X := mat.NewDense(10, 1, nil)
	folds, err := ms.NewKFold(3, false, 0).Split(X, nil)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	assert.Equal(t, []int{0, 1, 2, 3}, folds[0].Test)
	assert.Equal(t, []int{4, 5, 6}, folds[1].Test)
	assert.Equal(t, []int{7, 8, 9}, folds[2].Test)
	checkPartition(t, folds, 10)
}

func TestKFoldShuffleIsSeeded(t *testing.T) {
	X := mat.NewDense(20, 1, nil)
	a, err := ms.NewKFold(4, true, 42).Split(X, nil)
	require.NoError(t, err)
	b, err := ms.NewKFold(4, true, 42).Split(X, nil)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	checkPartition(t, a, 20)
}

func TestStratifiedKFold(t *testing.T) {
	y := mat.NewDense(10, 1, []float64{0, 1, 0, 0, 1, 0, 1, 0, 1, 0})
	X := mat.NewDense(10, 1, nil)

	folds, err := ms.NewStratifiedKFold(2, false, 0).Split(X, y)
	require.NoError(t, err)
	checkPartition(t, folds, 10)

	for _, f := range folds {
		ones := 0
		for _, i := range f.Test {
			ones += int(y.At(i, 0))
		}
		assert.Len(t, f.Test, 5)
		assert.Equal(t, 2, ones)
	}
}

func TestSplitErrors(t *testing.T) {
	X := mat.NewDense(3, 1, nil)
	y := mat.NewDense(3, 1, nil)

	_, err := ms.NewKFold(4, false, 0).Split(X, y)
	var valErr *cartErrors.ValueError
	assert.ErrorAs(t, err, &valErr)

	_, err = ms.NewStratifiedKFold(1, false, 0).Split(X, y)
	var vErr *cartErrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestTrainTestSplit(t *testing.T) {
	X := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	y := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	XTr, XTe, yTr, yTe, err := ms.TrainTestSplit(X, y, 0.3, 45)
	require.NoError(t, err)

	rTr, _ := XTr.Dims()
	rTe, _ := XTe.Dims()
	assert.Equal(t, 7, rTr)
	assert.Equal(t, 3, rTe)
	assert.Equal(t, XTe.RawMatrix().Data, yTe.RawMatrix().Data, "rows stay aligned")
	assert.Equal(t, XTr.RawMatrix().Data, yTr.RawMatrix().Data, "rows stay aligned")

	all := append(append([]float64{}, XTr.RawMatrix().Data...), XTe.RawMatrix().Data...)
	sort.Float64s(all)
	assert.Equal(t, X.RawMatrix().Data, all)

	_, XTe2, _, _, err := ms.TrainTestSplit(X, y, 0.3, 45)
	require.NoError(t, err)
	assert.Equal(t, XTe.RawMatrix().Data, XTe2.RawMatrix().Data)

	_, _, _, _, err = ms.TrainTestSplit(X, y, 1.5, 45)
	assert.Error(t, err)
}

func TestGetScorer(t *testing.T) {
	_, err := ms.GetScorer("balanced_accuracy")
	var vErr *cartErrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.Equal(t, []string{"accuracy", "f1", "neg_log_loss", "precision", "recall", "roc_auc"}, ms.ScorerNames())
}

func TestScorersOnFittedTree(t *testing.T) {
	X, y := testutil.Diabetes(150, 1)
	dt := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(3), tree.WithDTRandomState(17))
	require.NoError(t, dt.Fit(X, y))

	acc, err := ms.GetScorer("accuracy")
	require.NoError(t, err)
	got, err := acc(dt, X, y, 1)
	require.NoError(t, err)
	want, err := dt.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, name := range []string{"precision", "recall", "f1", "roc_auc"} {
		s, err := ms.GetScorer(name)
		require.NoError(t, err)
		v, err := s(dt, X, y, 1)
		require.NoError(t, err, name)
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}

	s, err := ms.GetScorer("neg_log_loss")
	require.NoError(t, err)
	v, err := s(dt, X, y, 1)
	require.NoError(t, err)
	assert.Less(t, v, 0.0)
}

func TestCrossValidate(t *testing.T) {
	X, y := testutil.Diabetes(200, 2)
	dt := tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17))

	res, err := ms.CrossValidate(dt, X, y,
		ms.WithCV(5),
		ms.WithScoring("accuracy", "f1", "roc_auc"),
	)
	require.NoError(t, err)

	for _, name := range []string{"accuracy", "f1", "roc_auc"} {
		assert.Len(t, res.TestScores[name], 5, name)
	}
	assert.Nil(t, res.TrainScores)
	assert.Len(t, res.FitTimes, 5)
	assert.False(t, dt.IsFitted(), "the prototype estimator must stay unfitted")

	again, err := ms.CrossValidate(dt, X, y,
		ms.WithCV(5),
		ms.WithScoring("accuracy", "f1", "roc_auc"),
		ms.WithNJobs(-1),
	)
	require.NoError(t, err)
	assert.Equal(t, res.TestScores, again.TestScores)
	assert.InDelta(t, res.MeanTest("accuracy"), again.MeanTest("accuracy"), 0)
}

func TestCrossValidateTrainScores(t *testing.T) {
	X, y := testutil.Diabetes(120, 3)
	res, err := ms.CrossValidate(tree.NewDecisionTreeClassifier(tree.WithDTRandomState(1)), X, y,
		ms.WithCV(3), ms.WithReturnTrainScore())
	require.NoError(t, err)

	require.Len(t, res.TrainScores["accuracy"], 3)
	assert.GreaterOrEqual(t, res.MeanTrain("accuracy"), res.MeanTest("accuracy"))
}

func TestCrossValidateOptionErrors(t *testing.T) {
	X, y := testutil.Diabetes(30, 1)
	dt := tree.NewDecisionTreeClassifier()

	_, err := ms.CrossValidate(dt, X, y, ms.WithCV(1))
	assert.Error(t, err)

	_, err = ms.CrossValidate(dt, X, y, ms.WithScoring("nope"))
	assert.Error(t, err)

	_, err = ms.CrossValidate(dt, X, y, ms.WithNJobs(0))
	assert.Error(t, err)

	_, err = ms.CrossValidate(dt, X, mat.NewDense(29, 1, nil))
	var dimErr *cartErrors.DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestParamGridCandidates(t *testing.T) {
	grid := ms.ParamGrid{
		"b": {1, 2},
		"a": {"x", "y"},
	}
	got := grid.Candidates()
	want := []map[string]any{
		{"a": "x", "b": 1},
		{"a": "x", "b": 2},
		{"a": "y", "b": 1},
		{"a": "y", "b": 2},
	}
	assert.Equal(t, want, got)

	assert.Equal(t, []any{2, 3, 4}, ms.IntRange(2, 5))
	assert.Empty(t, ms.IntRange(5, 5))
}

func TestGridSearchCV(t *testing.T) {
	X, y := testutil.Diabetes(200, 4)
	grid := ms.ParamGrid{
		"max_depth":         ms.IntRange(1, 4),
		"min_samples_split": {2, 10},
	}
	var progress bytes.Buffer
	gs := ms.NewGridSearchCV(tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17)), grid,
		ms.WithCV(4), ms.WithNJobs(-1), ms.WithVerbose(1), ms.WithProgressWriter(&progress))
	require.NoError(t, gs.Fit(X, y))

	res := gs.CVResults()
	require.Len(t, res.Params, 6)
	assert.Equal(t, map[string]any{"max_depth": 1, "min_samples_split": 2}, res.Params[0])
	assert.Len(t, res.SplitTestScores["accuracy"][0], 4)

	means := res.MeanTestScore["accuracy"]
	best := 0
	for i, m := range means {
		if m > means[best] {
			best = i
		}
	}
	assert.Equal(t, best, gs.BestIndex())
	assert.Equal(t, res.Params[best], gs.BestParams())
	assert.Equal(t, means[best], gs.BestScore())
	assert.Equal(t, 1, res.RankTestScore[best])
	assert.True(t, gs.BestEstimator().IsFitted())
	assert.NotEmpty(t, progress.String())

	pred, err := gs.Predict(X)
	require.NoError(t, err)
	r, _ := pred.Dims()
	assert.Equal(t, 200, r)

	// sequential and parallel runs agree
	seq := ms.NewGridSearchCV(tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17)), grid, ms.WithCV(4))
	require.NoError(t, seq.Fit(X, y))
	assert.Equal(t, res.MeanTestScore, seq.CVResults().MeanTestScore)
	assert.Equal(t, gs.BestParams(), seq.BestParams())
}

func TestGridSearchCVTieBreak(t *testing.T) {
	X, y := testutil.Diabetes(100, 5)
	// min_samples_leaf larger than any fold makes every candidate a single leaf
	grid := ms.ParamGrid{"max_depth": {3, 1, 2}}
	gs := ms.NewGridSearchCV(tree.NewDecisionTreeClassifier(tree.WithMinSamplesLeaf(1000)), grid, ms.WithCV(3))
	require.NoError(t, gs.Fit(X, y))

	assert.Equal(t, 0, gs.BestIndex(), "the first candidate wins ties")
	assert.Equal(t, []int{1, 1, 1}, gs.CVResults().RankTestScore)
}

func TestGridSearchCVErrors(t *testing.T) {
	X, y := testutil.Diabetes(50, 1)

	gs := ms.NewGridSearchCV(tree.NewDecisionTreeClassifier(), ms.ParamGrid{"max_depth": {1}})
	_, err := gs.Predict(X)
	var nfErr *cartErrors.NotFittedError
	assert.ErrorAs(t, err, &nfErr)
	assert.Nil(t, gs.BestParams())

	err = ms.NewGridSearchCV(tree.NewDecisionTreeClassifier(), ms.ParamGrid{"not_a_param": {1}}).Fit(X, y)
	var vErr *cartErrors.ValidationError
	assert.ErrorAs(t, err, &vErr)

	err = ms.NewGridSearchCV(tree.NewDecisionTreeClassifier(), ms.ParamGrid{}).Fit(X, y)
	assert.ErrorAs(t, err, &vErr)
}

func TestValidationCurve(t *testing.T) {
	X, y := testutil.Diabetes(150, 6)
	values := ms.IntRange(1, 6)
	curve, err := ms.ValidationCurve(tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17)), X, y,
		"max_depth", values, ms.WithCV(3), ms.WithScoring("roc_auc"))
	require.NoError(t, err)

	assert.Equal(t, "roc_auc", curve.Scoring)
	require.Len(t, curve.TrainScores, len(values))
	require.Len(t, curve.TestScores, len(values))
	for i := range values {
		assert.Len(t, curve.TrainScores[i], 3)
		assert.Len(t, curve.TestScores[i], 3)
	}

	train := curve.MeanTrain()
	assert.Len(t, curve.MeanTest(), len(values))
	assert.Len(t, curve.StdTest(), len(values))
	// deeper trees fit the training folds at least as well
	assert.GreaterOrEqual(t, train[len(train)-1], train[0])

	_, err = ms.ValidationCurve(tree.NewDecisionTreeClassifier(), X, y, "max_depth", nil)
	assert.Error(t, err)
}

func takeRows(X, y *mat.Dense, idx []int) (*mat.Dense, *mat.Dense) {
	_, p := X.Dims()
	Xs := mat.NewDense(len(idx), p, nil)
	ys := mat.NewDense(len(idx), 1, nil)
	for r, i := range idx {
		Xs.SetRow(r, X.RawRowView(i))
		ys.Set(r, 0, y.At(i, 0))
	}
	return Xs, ys
}

func TestCrossValidateBinaryScoresPerFold(t *testing.T) {
	X, y := testutil.Diabetes(300, 7)
	dt := tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17))

	res, err := ms.CrossValidate(dt, X, y,
		ms.WithCV(5),
		ms.WithScoring("accuracy", "precision", "recall", "f1"),
	)
	require.NoError(t, err)

	folds, err := ms.NewStratifiedKFold(5, false, 0).Split(X, y)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	for f, fold := range folds {
		XTrain, yTrain := takeRows(X, y, fold.Train)
		XTest, yTest := takeRows(X, y, fold.Test)
		est := tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17))
		require.NoError(t, est.Fit(XTrain, yTrain))
		pred, err := est.Predict(XTest)
		require.NoError(t, err)

		var tp, fp, fn, correct float64
		for i := range fold.Test {
			truth, got := yTest.At(i, 0), pred.At(i, 0)
			switch {
			case truth == 1 && got == 1:
				tp++
			case truth == 0 && got == 1:
				fp++
			case truth == 1 && got == 0:
				fn++
			}
			if truth == got {
				correct++
			}
		}

		assert.InDelta(t, correct/float64(len(fold.Test)), res.TestScores["accuracy"][f], 1e-12, "fold %d", f)
		assert.InDelta(t, tp/(tp+fp), res.TestScores["precision"][f], 1e-12, "fold %d", f)
		assert.InDelta(t, tp/(tp+fn), res.TestScores["recall"][f], 1e-12, "fold %d", f)
		assert.InDelta(t, 2*tp/(2*tp+fp+fn), res.TestScores["f1"][f], 1e-12, "fold %d", f)
		if res.TestScores["accuracy"][f] < 1 {
			assert.Less(t, res.TestScores["f1"][f], 1.0, "fold %d", f)
		}
	}
}

// fixedSplitter returns the same folds whatever the data.
type fixedSplitter []ms.Fold

func (s fixedSplitter) Split(_, _ mat.Matrix) ([]ms.Fold, error) { return s, nil }
func (s fixedSplitter) NSplits() int                             { return len(s) }

func TestPositiveLabelComesFromFullLabels(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 0})

	pos, err := ms.PositiveLabel(y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)

	// the training part holds no positive sample
	split := fixedSplitter{{Train: []int{0, 1, 2}, Test: []int{3, 4, 5}}}
	res, err := ms.CrossValidate(tree.NewDecisionTreeClassifier(), X, y,
		ms.WithSplitter(split),
		ms.WithScoring("accuracy", "f1", "roc_auc"),
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, res.TestScores["accuracy"][0], 1e-12)
	assert.Equal(t, 0.0, res.TestScores["f1"][0], "class 0 must not be scored as positive")
	assert.Equal(t, 0.5, res.TestScores["roc_auc"][0])

	// an explicit positive label overrides the default
	res, err = ms.CrossValidate(tree.NewDecisionTreeClassifier(), X, y,
		ms.WithSplitter(split),
		ms.WithScoring("recall"),
		ms.WithPosLabel(0),
	)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.TestScores["recall"][0])
}
