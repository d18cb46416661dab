package model_selection

import (
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/cart/core/model"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
)

// Option configures CrossValidate, GridSearchCV and ValidationCurve.
type Option func(*options)

type options struct {
	cv          int
	splitter    Splitter
	scoring     []string
	returnTrain bool
	nJobs       int
	verbose     int
	progress    io.Writer
	posLabel    *float64
}

func defaultOptions() *options {
	return &options{
		cv:       5,
		scoring:  []string{"accuracy"},
		nJobs:    1,
		progress: os.Stderr,
	}
}

// WithCV sets the number of stratified folds (default 5).
func WithCV(k int) Option {
	return func(o *options) { o.cv = k }
}

// WithSplitter replaces the default StratifiedKFold splitter.
func WithSplitter(s Splitter) Option {
	return func(o *options) { o.splitter = s }
}

// WithScoring sets the scorer names. GridSearchCV ranks candidates by the first one.
func WithScoring(names ...string) Option {
	return func(o *options) { o.scoring = names }
}

// WithReturnTrainScore also scores every fold on its training part.
func WithReturnTrainScore() Option {
	return func(o *options) { o.returnTrain = true }
}

// WithNJobs bounds the number of concurrent fits. -1 uses every CPU.
func WithNJobs(n int) Option {
	return func(o *options) { o.nJobs = n }
}

// WithVerbose sets the verbosity. At 1 or above GridSearchCV logs its plan and
// draws a progress bar.
func WithVerbose(v int) Option {
	return func(o *options) { o.verbose = v }
}

// WithProgressWriter redirects the progress bar (default os.Stderr).
func WithProgressWriter(w io.Writer) Option {
	return func(o *options) { o.progress = w }
}

// WithPosLabel fixes the positive class of the binary scorers. By default it is
// the largest label of y.
func WithPosLabel(label float64) Option {
	return func(o *options) { o.posLabel = &label }
}

func resolveOptions(opts []Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.splitter == nil {
		if o.cv < 2 {
			return nil, cartErrors.NewValidationError("cv", "must be at least 2", o.cv)
		}
		o.splitter = NewStratifiedKFold(o.cv, false, 0)
	}
	if len(o.scoring) == 0 {
		return nil, cartErrors.NewValidationError("scoring", "at least one scorer is required", o.scoring)
	}
	for _, name := range o.scoring {
		if _, err := GetScorer(name); err != nil {
			return nil, err
		}
	}
	if o.nJobs == 0 || o.nJobs < -1 {
		return nil, cartErrors.NewValidationError("n_jobs", "must be -1 or positive", o.nJobs)
	}
	return o, nil
}

func (o *options) positive(y mat.Matrix) (float64, error) {
	if o.posLabel != nil {
		return *o.posLabel, nil
	}
	return PositiveLabel(y)
}

func (o *options) workers() int {
	if o.nJobs == -1 {
		return runtime.NumCPU()
	}
	return o.nJobs
}

// CVResults holds per-fold scores keyed by scorer name.
type CVResults struct {
	TestScores  map[string][]float64
	TrainScores map[string][]float64 // nil unless WithReturnTrainScore
	FitTimes    []time.Duration
	ScoreTimes  []time.Duration
}

// MeanTest returns the mean test score of scorer name.
func (r *CVResults) MeanTest(name string) float64 {
	return stat.Mean(r.TestScores[name], nil)
}

// StdTest returns the population standard deviation of the test scores of name.
func (r *CVResults) StdTest(name string) float64 {
	return popStd(r.TestScores[name])
}

// MeanTrain returns the mean train score of scorer name.
func (r *CVResults) MeanTrain(name string) float64 {
	return stat.Mean(r.TrainScores[name], nil)
}

// foldResult is the outcome of fitting and scoring one clone on one fold.
type foldResult struct {
	test      []float64
	train     []float64
	fitTime   time.Duration
	scoreTime time.Duration
}

// CrossValidate fits a clone of est on every fold and scores it on the held-out part.
//
// パラメータ:
//   - est: 未学習の分類器 (Clone() でフォールドごとに複製される)
//   - X, y: 全データ (y は n×1)
//   - opts: WithCV, WithScoring, WithReturnTrainScore, WithNJobs など
//
// 使用例:
//
//	res, err := model_selection.CrossValidate(dt, X, y,
//	    model_selection.WithCV(5),
//	    model_selection.WithScoring("accuracy", "f1", "roc_auc"))
//	fmt.Println(res.MeanTest("roc_auc"))
func CrossValidate(est model.Classifier, X, y mat.Matrix, opts ...Option) (_ *CVResults, err error) {
	defer cartErrors.Recover(&err, "CrossValidate")
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := checkXY("CrossValidate", X, y); err != nil {
		return nil, err
	}

	pos, err := o.positive(y)
	if err != nil {
		return nil, err
	}
	folds, err := o.splitter.Split(X, y)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("CrossValidate")
	logger.Debug("Cross-validation started",
		log.OperationKey, log.OperationCrossValidate,
		log.FoldsKey, len(folds),
		log.ScoringKey, o.scoring,
	)

	results := make([]foldResult, len(folds))
	g := new(errgroup.Group)
	g.SetLimit(o.workers())
	for i, fold := range folds {
		g.Go(func() error {
			r, err := fitAndScore(est.Clone(), X, y, fold, o.scoring, pos, o.returnTrain)
			if err != nil {
				return cartErrors.NewModelError("CrossValidate", "fold failed", err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Cross-validation failed", err, log.OperationKey, log.OperationCrossValidate)
		return nil, err
	}

	out := &CVResults{TestScores: make(map[string][]float64)}
	if o.returnTrain {
		out.TrainScores = make(map[string][]float64)
	}
	for _, r := range results {
		for s, name := range o.scoring {
			out.TestScores[name] = append(out.TestScores[name], r.test[s])
			if o.returnTrain {
				out.TrainScores[name] = append(out.TrainScores[name], r.train[s])
			}
		}
		out.FitTimes = append(out.FitTimes, r.fitTime)
		out.ScoreTimes = append(out.ScoreTimes, r.scoreTime)
	}
	return out, nil
}

func fitAndScore(est model.Classifier, X, y mat.Matrix, fold Fold, scoring []string, pos float64, returnTrain bool) (foldResult, error) {
	var r foldResult
	XTrain, yTrain := takeRows(X, y, fold.Train)
	XTest, yTest := takeRows(X, y, fold.Test)

	start := time.Now()
	if err := est.Fit(XTrain, yTrain); err != nil {
		return r, err
	}
	r.fitTime = time.Since(start)

	start = time.Now()
	for _, name := range scoring {
		scorer, err := GetScorer(name)
		if err != nil {
			return r, err
		}
		s, err := scorer(est, XTest, yTest, pos)
		if err != nil {
			return r, err
		}
		r.test = append(r.test, s)
		if returnTrain {
			s, err := scorer(est, XTrain, yTrain, pos)
			if err != nil {
				return r, err
			}
			r.train = append(r.train, s)
		}
	}
	r.scoreTime = time.Since(start)
	return r, nil
}

func checkXY(op string, X, y mat.Matrix) error {
	if X == nil || y == nil {
		return cartErrors.NewModelError(op, "nil input", cartErrors.ErrEmptyData)
	}
	n, _ := X.Dims()
	yr, yc := y.Dims()
	if yr != n {
		return cartErrors.NewDimensionError(op, n, yr, 0)
	}
	if yc != 1 {
		return cartErrors.NewDimensionError(op, 1, yc, 1)
	}
	return nil
}

func popStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(xs, nil)
	return math.Sqrt(variance)
}
