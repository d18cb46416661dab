package model_selection

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/cart/core/model"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
)

// CurveResult holds the per-fold train and test scores of a validation curve.
// TrainScores[i] and TestScores[i] belong to Values[i].
type CurveResult struct {
	Param       string
	Values      []any
	Scoring     string
	TrainScores [][]float64
	TestScores  [][]float64
}

// MeanTrain returns the mean train score per value.
func (c *CurveResult) MeanTrain() []float64 {
	return means(c.TrainScores)
}

// MeanTest returns the mean test score per value.
func (c *CurveResult) MeanTest() []float64 {
	return means(c.TestScores)
}

// StdTest returns the population standard deviation of the test scores per value.
func (c *CurveResult) StdTest() []float64 {
	out := make([]float64, len(c.TestScores))
	for i, s := range c.TestScores {
		out[i] = popStd(s)
	}
	return out
}

func means(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = stat.Mean(r, nil)
	}
	return out
}

// ValidationCurve cross-validates est once per value of param and records both the
// training and the held-out score of every fold. Only the first scorer is used.
//
// 使用例:
//
//	curve, err := model_selection.ValidationCurve(dt, X, y, "max_depth",
//	    model_selection.IntRange(1, 11),
//	    model_selection.WithCV(10), model_selection.WithScoring("roc_auc"))
func ValidationCurve(est model.Classifier, X, y mat.Matrix, param string, values []any, opts ...Option) (_ *CurveResult, err error) {
	defer cartErrors.Recover(&err, "ValidationCurve")
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, cartErrors.NewValidationError("param_range", "must not be empty", values)
	}

	res := &CurveResult{
		Param:       param,
		Values:      values,
		Scoring:     o.scoring[0],
		TrainScores: make([][]float64, len(values)),
		TestScores:  make([][]float64, len(values)),
	}
	cvOpts := append(append([]Option{}, opts...), WithScoring(res.Scoring), WithReturnTrainScore(), WithSplitter(o.splitter))
	for i, v := range values {
		candidate := est.Clone()
		if err := candidate.SetParams(map[string]any{param: v}); err != nil {
			return nil, err
		}
		cv, err := CrossValidate(candidate, X, y, cvOpts...)
		if err != nil {
			return nil, err
		}
		res.TrainScores[i] = cv.TrainScores[res.Scoring]
		res.TestScores[i] = cv.TestScores[res.Scoring]
	}

	log.GetLoggerWithName("ValidationCurve").Debug("Validation curve computed",
		log.OperationKey, log.OperationCrossValidate,
		log.HyperParamsKey, param,
		log.ScoringKey, res.Scoring,
	)
	return res, nil
}
