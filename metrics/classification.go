package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// logLossEps clips probabilities away from 0 and 1 before taking logs.
const logLossEps = 1e-15

// AUC returns the area under the ROC curve of scores yScore against binary
// labels yTrue (1 = positive class).
//
// Tied scores share one ROC point, so a constant score gives 0.5. When yTrue
// holds a single class the area is undefined: 0.5 is returned together with an
// UndefinedMetricWarning.
//
// Example:
//
//	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
//	yScore := mat.NewVecDense(4, []float64{0.1, 0.4, 0.35, 0.8})
//	auc, _ := AUC(yTrue, yScore) // 0.75
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	if err := checkPair("AUC", yTrue, yScore); err != nil {
		return 0, err
	}
	if err := checkBinary(yTrue); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	scores := make([]float64, n)
	classes := make([]bool, n)
	var nPos int
	for i := 0; i < n; i++ {
		scores[i] = yScore.AtVec(i)
		classes[i] = yTrue.AtVec(i) == 1
		if classes[i] {
			nPos++
		}
	}
	if nPos == 0 || nPos == n {
		cartErrors.Warn(cartErrors.NewUndefinedMetricWarning("roc_auc", "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// BinaryLogLoss returns the mean cross-entropy of predicted positive-class
// probabilities yProba against binary labels yTrue.
func BinaryLogLoss(yTrue, yProba *mat.VecDense) (float64, error) {
	if err := checkPair("BinaryLogLoss", yTrue, yProba); err != nil {
		return 0, err
	}
	if err := checkBinary(yTrue); err != nil {
		return 0, err
	}

	var loss float64
	for i := 0; i < yTrue.Len(); i++ {
		p := math.Min(math.Max(yProba.AtVec(i), logLossEps), 1-logLossEps)
		if yTrue.AtVec(i) == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(yTrue.Len()), nil
}

// Accuracy returns the fraction of rows where yPred equals yTrue.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}
	var correct int
	for i := 0; i < yTrue.Len(); i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(yTrue.Len()), nil
}

// ClassificationError returns the misclassification rate, 1 - Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

func checkBinary(y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return cartErrors.NewValidationError("y_true",
				fmt.Sprintf("must contain only 0 and 1, found %v at index %d", v, i), v)
		}
	}
	return nil
}
