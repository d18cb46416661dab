package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// ConfusionMatrix computes the confusion matrix of yPred against yTrue.
//
// Row i holds the samples whose true label is labels[i], column j the samples
// predicted as labels[j]. When labels is nil the sorted union of the labels in
// yTrue and yPred is used.
//
// Example:
//
//	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
//	yPred := mat.NewVecDense(4, []float64{0, 1, 1, 1})
//	cm, _ := ConfusionMatrix(yTrue, yPred, nil)
//	// cm = [[1 1]
//	//       [0 2]]
func ConfusionMatrix(yTrue, yPred *mat.VecDense, labels []float64) (*mat.Dense, error) {
	if err := checkPair("ConfusionMatrix", yTrue, yPred); err != nil {
		return nil, err
	}
	if labels == nil {
		labels = uniqueLabels(yTrue, yPred)
	}
	if len(labels) == 0 {
		return nil, cartErrors.NewValueError("ConfusionMatrix", "labels must not be empty")
	}

	index := make(map[float64]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := 0; i < yTrue.Len(); i++ {
		r, okT := index[yTrue.AtVec(i)]
		c, okP := index[yPred.AtVec(i)]
		if !okT || !okP {
			continue
		}
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, nil
}

// PrecisionRecallFScoreSupport computes precision, recall, F1 and support for each label.
//
// Labels without predicted samples get precision 0, labels without true samples
// get recall 0; both cases emit an UndefinedMetricWarning.
func PrecisionRecallFScoreSupport(yTrue, yPred *mat.VecDense, labels []float64) (precision, recall, f1 []float64, support []int, err error) {
	if labels == nil {
		if err := checkPair("PrecisionRecallFScoreSupport", yTrue, yPred); err != nil {
			return nil, nil, nil, nil, err
		}
		labels = uniqueLabels(yTrue, yPred)
	}
	cm, err := ConfusionMatrix(yTrue, yPred, labels)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	k := len(labels)
	precision = make([]float64, k)
	recall = make([]float64, k)
	f1 = make([]float64, k)
	support = make([]int, k)

	for i := 0; i < k; i++ {
		tp := cm.At(i, i)
		var predicted, actual float64
		for j := 0; j < k; j++ {
			predicted += cm.At(j, i)
			actual += cm.At(i, j)
		}
		support[i] = int(actual)

		if predicted > 0 {
			precision[i] = tp / predicted
		} else {
			cartErrors.Warn(cartErrors.NewUndefinedMetricWarning("precision",
				fmt.Sprintf("no predicted samples for label %v", labels[i]), 0))
		}
		if actual > 0 {
			recall[i] = tp / actual
		} else {
			cartErrors.Warn(cartErrors.NewUndefinedMetricWarning("recall",
				fmt.Sprintf("no true samples for label %v", labels[i]), 0))
		}
		if s := precision[i] + recall[i]; s > 0 {
			f1[i] = 2 * precision[i] * recall[i] / s
		}
	}
	return precision, recall, f1, support, nil
}

// binaryCounts returns the true positives, the predicted positives and the
// actual positives of posLabel. Every other label counts as negative.
func binaryCounts(op string, yTrue, yPred *mat.VecDense, posLabel float64) (tp, predicted, actual float64, err error) {
	if err := checkPair(op, yTrue, yPred); err != nil {
		return 0, 0, 0, err
	}
	for i := 0; i < yTrue.Len(); i++ {
		isTrue := yTrue.AtVec(i) == posLabel
		isPred := yPred.AtVec(i) == posLabel
		if isTrue {
			actual++
		}
		if isPred {
			predicted++
		}
		if isTrue && isPred {
			tp++
		}
	}
	return tp, predicted, actual, nil
}

// Precision returns tp / (tp + fp) for posLabel, 0 with an
// UndefinedMetricWarning when posLabel is never predicted.
func Precision(yTrue, yPred *mat.VecDense, posLabel float64) (float64, error) {
	tp, predicted, _, err := binaryCounts("Precision", yTrue, yPred, posLabel)
	if err != nil {
		return 0, err
	}
	if predicted == 0 {
		cartErrors.Warn(cartErrors.NewUndefinedMetricWarning("precision",
			fmt.Sprintf("no predicted samples for label %v", posLabel), 0))
		return 0, nil
	}
	return tp / predicted, nil
}

// Recall returns tp / (tp + fn) for posLabel, 0 with an
// UndefinedMetricWarning when posLabel never occurs in yTrue.
func Recall(yTrue, yPred *mat.VecDense, posLabel float64) (float64, error) {
	tp, _, actual, err := binaryCounts("Recall", yTrue, yPred, posLabel)
	if err != nil {
		return 0, err
	}
	if actual == 0 {
		cartErrors.Warn(cartErrors.NewUndefinedMetricWarning("recall",
			fmt.Sprintf("no true samples for label %v", posLabel), 0))
		return 0, nil
	}
	return tp / actual, nil
}

// F1Score returns the harmonic mean of precision and recall of posLabel,
// 2tp / (2tp + fp + fn).
func F1Score(yTrue, yPred *mat.VecDense, posLabel float64) (float64, error) {
	tp, predicted, actual, err := binaryCounts("F1Score", yTrue, yPred, posLabel)
	if err != nil {
		return 0, err
	}
	if predicted+actual == 0 {
		cartErrors.Warn(cartErrors.NewUndefinedMetricWarning("f1",
			fmt.Sprintf("label %v is neither present nor predicted", posLabel), 0))
		return 0, nil
	}
	return 2 * tp / (predicted + actual), nil
}

// ReportOptions configures ClassificationReport.
type ReportOptions struct {
	Labels      []float64 // nil: sorted labels found in yTrue and yPred
	TargetNames []string  // display names, one per label
	Digits      int       // 0 means 2
}

// ClassMetrics is one line of a classification report.
type ClassMetrics struct {
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is the result of ClassificationReport.
type Report struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Digits      int
}

// ClassificationReport builds the per-class precision/recall/F1 summary together with
// accuracy, macro and support-weighted averages.
//
// 使用例:
//
//	rep, err := metrics.ClassificationReport(yTrue, yPred, metrics.ReportOptions{})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(rep)
func ClassificationReport(yTrue, yPred *mat.VecDense, opts ReportOptions) (*Report, error) {
	if err := checkPair("ClassificationReport", yTrue, yPred); err != nil {
		return nil, err
	}
	labels := opts.Labels
	if labels == nil {
		labels = uniqueLabels(yTrue, yPred)
	}
	names := opts.TargetNames
	if names == nil {
		names = make([]string, len(labels))
		for i, l := range labels {
			names[i] = strconv.FormatFloat(l, 'f', -1, 64)
		}
	}
	if len(names) != len(labels) {
		return nil, cartErrors.NewDimensionError("ClassificationReport", len(labels), len(names), 0)
	}
	digits := opts.Digits
	if digits <= 0 {
		digits = 2
	}

	p, r, f, s, err := PrecisionRecallFScoreSupport(yTrue, yPred, labels)
	if err != nil {
		return nil, err
	}
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	rep := &Report{Accuracy: acc, Digits: digits}
	total := 0
	for _, v := range s {
		total += v
	}
	k := float64(len(labels))
	rep.MacroAvg = ClassMetrics{Name: "macro avg", Support: total}
	rep.WeightedAvg = ClassMetrics{Name: "weighted avg", Support: total}
	for i := range labels {
		rep.Classes = append(rep.Classes, ClassMetrics{
			Name: names[i], Precision: p[i], Recall: r[i], F1: f[i], Support: s[i],
		})
		rep.MacroAvg.Precision += p[i] / k
		rep.MacroAvg.Recall += r[i] / k
		rep.MacroAvg.F1 += f[i] / k
		if total > 0 {
			w := float64(s[i]) / float64(total)
			rep.WeightedAvg.Precision += p[i] * w
			rep.WeightedAvg.Recall += r[i] * w
			rep.WeightedAvg.F1 += f[i] * w
		}
	}
	return rep, nil
}

// String renders the report in scikit-learn's classification_report layout.
func (r *Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	if r.Digits > width {
		width = r.Digits
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(c ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, c.Name,
			r.Digits, c.Precision, r.Digits, c.Recall, r.Digits, c.F1, c.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", r.Digits, r.Accuracy, r.MacroAvg.Support)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}

func checkPair(op string, yTrue, yPred *mat.VecDense) error {
	if yTrue == nil || yPred == nil {
		return cartErrors.NewValueError(op, "input vectors must not be nil")
	}
	if yTrue.Len() != yPred.Len() {
		return cartErrors.NewDimensionError(op, yTrue.Len(), yPred.Len(), 0)
	}
	if yTrue.Len() == 0 {
		return cartErrors.NewValueError(op, "input vectors must not be empty")
	}
	return nil
}

func uniqueLabels(vs ...*mat.VecDense) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, v := range vs {
		for i := 0; i < v.Len(); i++ {
			x := v.AtVec(i)
			if _, ok := seen[x]; !ok {
				seen[x] = struct{}{}
				out = append(out, x)
			}
		}
	}
	sort.Float64s(out)
	return out
}
