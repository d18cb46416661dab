package model_selection

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/cart/core/model"
	"github.com/ezoic/cart/metrics"
	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// Scorer evaluates a fitted classifier on (X, y). Higher is always better.
//
// posLabel is the positive class of the binary metrics. CrossValidate and
// GridSearchCV take it from the full label column, so a fold whose training
// part lacks the positive class still scores the right one.
type Scorer func(est model.Classifier, X, y mat.Matrix, posLabel float64) (float64, error)

var scorers = map[string]Scorer{
	"accuracy":     accuracyScorer,
	"precision":    labelScorer(metrics.Precision),
	"recall":       labelScorer(metrics.Recall),
	"f1":           labelScorer(metrics.F1Score),
	"roc_auc":      rocAUCScorer,
	"neg_log_loss": negLogLossScorer,
}

// GetScorer returns the scorer registered under name.
//
// Available names: accuracy, precision, recall, f1, roc_auc, neg_log_loss.
func GetScorer(name string) (Scorer, error) {
	s, ok := scorers[name]
	if !ok {
		return nil, cartErrors.NewValidationError("scoring",
			fmt.Sprintf("unknown scorer, want one of %s", strings.Join(ScorerNames(), ", ")), name)
	}
	return s, nil
}

// ScorerNames returns the registered scorer names in sorted order.
func ScorerNames() []string {
	names := make([]string, 0, len(scorers))
	for n := range scorers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PositiveLabel returns the largest label of y, the class the binary metrics
// treat as positive.
func PositiveLabel(y mat.Matrix) (float64, error) {
	r, _ := y.Dims()
	if r == 0 {
		return 0, cartErrors.NewModelError("PositiveLabel", "empty labels", cartErrors.ErrEmptyData)
	}
	return floats.Max(mat.Col(nil, 0, y)), nil
}

func accuracyScorer(est model.Classifier, X, y mat.Matrix, _ float64) (float64, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(column(y), column(pred))
}

func labelScorer(fn func(yt, yp *mat.VecDense, pos float64) (float64, error)) Scorer {
	return func(est model.Classifier, X, y mat.Matrix, pos float64) (float64, error) {
		pred, err := est.Predict(X)
		if err != nil {
			return 0, err
		}
		return fn(column(y), column(pred), pos)
	}
}

func rocAUCScorer(est model.Classifier, X, y mat.Matrix, pos float64) (float64, error) {
	yBin, score, err := positiveProba(est, X, y, pos)
	if err != nil {
		return 0, err
	}
	return metrics.AUC(yBin, score)
}

func negLogLossScorer(est model.Classifier, X, y mat.Matrix, pos float64) (float64, error) {
	yBin, proba, err := positiveProba(est, X, y, pos)
	if err != nil {
		return 0, err
	}
	loss, err := metrics.BinaryLogLoss(yBin, proba)
	if err != nil {
		return 0, err
	}
	return -loss, nil
}

// positiveProba returns y binarized against pos and the predicted probability
// of pos. A model that never saw pos during Fit gives it probability 0.
func positiveProba(est model.Classifier, X, y mat.Matrix, pos float64) (*mat.VecDense, *mat.VecDense, error) {
	proba, err := est.PredictProba(X)
	if err != nil {
		return nil, nil, err
	}
	col := slices.Index(est.Classes(), pos)
	n, _ := proba.Dims()
	yBin := mat.NewVecDense(n, nil)
	score := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if y.At(i, 0) == pos {
			yBin.SetVec(i, 1)
		}
		if col >= 0 {
			score.SetVec(i, proba.At(i, col))
		}
	}
	return yBin, score, nil
}

func column(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
