package model_selection

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/cart/core/model"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
)

// ParamGrid maps a hyperparameter name to its candidate values.
type ParamGrid map[string][]any

// Candidates expands the grid into every combination. Keys are taken in sorted order
// and the last key varies fastest, as in scikit-learn's ParameterGrid.
func (g ParamGrid) Candidates() []map[string]any {
	keys := slices.Sorted(maps.Keys(g))
	out := []map[string]any{{}}
	for _, k := range keys {
		var next []map[string]any
		for _, partial := range out {
			for _, v := range g[k] {
				c := maps.Clone(partial)
				c[k] = v
				next = append(next, c)
			}
		}
		out = next
	}
	return out
}

// IntRange returns the values start, start+1, ..., stop-1 as grid candidates.
func IntRange(start, stop int) []any {
	out := make([]any, 0, max(stop-start, 0))
	for v := start; v < stop; v++ {
		out = append(out, v)
	}
	return out
}

// GridResults is the cv_results_ table of a GridSearchCV run. Row i describes Params[i].
type GridResults struct {
	Params          []map[string]any
	MeanTestScore   map[string][]float64
	StdTestScore    map[string][]float64
	SplitTestScores map[string][][]float64 // [candidate][fold]
	RankTestScore   []int                  // by the first scorer, 1 is best
}

// GridSearchCV exhaustively evaluates a parameter grid under cross-validation.
type GridSearchCV struct {
	estimator model.Classifier
	grid      ParamGrid
	opts      []Option

	scoring       string
	results       *GridResults
	bestIndex     int
	bestEstimator model.Classifier
}

// NewGridSearchCV creates a grid search over grid for clones of est.
//
// 使用例:
//
//	gs := model_selection.NewGridSearchCV(tree.NewDecisionTreeClassifier(tree.WithDTRandomState(17)),
//	    model_selection.ParamGrid{
//	        "max_depth":         model_selection.IntRange(1, 11),
//	        "min_samples_split": model_selection.IntRange(2, 20),
//	    },
//	    model_selection.WithCV(5), model_selection.WithNJobs(-1))
//	if err := gs.Fit(X, y); err != nil {
//	    return err
//	}
//	fmt.Println(gs.BestParams(), gs.BestScore())
func NewGridSearchCV(est model.Classifier, grid ParamGrid, opts ...Option) *GridSearchCV {
	return &GridSearchCV{estimator: est, grid: grid, opts: opts, bestIndex: -1}
}

// Fit evaluates every candidate on every fold, picks the candidate with the highest
// mean score of the first scorer (the first one found wins ties) and refits it on
// all of X, y.
func (gs *GridSearchCV) Fit(X, y mat.Matrix) (err error) {
	defer cartErrors.Recover(&err, "GridSearchCV.Fit")
	o, err := resolveOptions(gs.opts)
	if err != nil {
		return err
	}
	if err := checkXY("GridSearchCV.Fit", X, y); err != nil {
		return err
	}
	candidates := gs.grid.Candidates()
	if len(candidates) == 0 || len(gs.grid) == 0 {
		return cartErrors.NewValidationError("param_grid", "must contain at least one value per parameter", gs.grid)
	}
	for _, c := range candidates {
		if err := gs.estimator.Clone().SetParams(c); err != nil {
			return err
		}
	}
	gs.scoring = o.scoring[0]

	pos, err := o.positive(y)
	if err != nil {
		return err
	}
	folds, err := o.splitter.Split(X, y)
	if err != nil {
		return err
	}
	nFits := len(candidates) * len(folds)

	logger := log.GetLoggerWithName("GridSearchCV")
	if o.verbose >= 1 {
		logger.Info(fmt.Sprintf("Fitting %d folds for each of %d candidates, totalling %d fits",
			len(folds), len(candidates), nFits),
			log.OperationKey, log.OperationSearch,
			log.CandidatesKey, len(candidates),
			log.FoldsKey, len(folds),
			log.FitsKey, nFits,
			log.JobsKey, o.workers(),
		)
	}

	var (
		bar   *progressbar.ProgressBar
		barMu sync.Mutex
	)
	if o.verbose >= 1 {
		bar = newProgressBar("grid search", nFits, o)
	}

	// results are stored by index, so scheduling does not affect the outcome
	results := make([][]foldResult, len(candidates))
	for c := range results {
		results[c] = make([]foldResult, len(folds))
	}
	g := new(errgroup.Group)
	g.SetLimit(o.workers())
	for c, params := range candidates {
		for f, fold := range folds {
			g.Go(func() error {
				est := gs.estimator.Clone()
				if err := est.SetParams(params); err != nil {
					return err
				}
				r, err := fitAndScore(est, X, y, fold, o.scoring, pos, false)
				if err != nil {
					return cartErrors.NewModelError("GridSearchCV.Fit",
						fmt.Sprintf("candidate %v fold %d failed", params, f), err)
				}
				results[c][f] = r
				if bar != nil {
					barMu.Lock()
					_ = bar.Add(1)
					barMu.Unlock()
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		logger.Error("Grid search failed", err, log.OperationKey, log.OperationSearch)
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	gs.results = summarize(candidates, results, o.scoring)
	primary := gs.results.MeanTestScore[gs.scoring]
	gs.bestIndex = 0
	for i, s := range primary {
		if s > primary[gs.bestIndex] {
			gs.bestIndex = i
		}
	}

	best := gs.estimator.Clone()
	if err := best.SetParams(candidates[gs.bestIndex]); err != nil {
		return err
	}
	if err := best.Fit(X, y); err != nil {
		return cartErrors.NewModelError("GridSearchCV.Fit", "refit failed", err)
	}
	gs.bestEstimator = best

	logger.Debug("Grid search finished",
		log.OperationKey, log.OperationSearch,
		log.HyperParamsKey, candidates[gs.bestIndex],
		log.ScoreKey, primary[gs.bestIndex],
	)
	return nil
}

func summarize(candidates []map[string]any, results [][]foldResult, scoring []string) *GridResults {
	res := &GridResults{
		Params:          candidates,
		MeanTestScore:   make(map[string][]float64),
		StdTestScore:    make(map[string][]float64),
		SplitTestScores: make(map[string][][]float64),
	}
	for s, name := range scoring {
		for _, folds := range results {
			scores := make([]float64, len(folds))
			for f, r := range folds {
				scores[f] = r.test[s]
			}
			res.SplitTestScores[name] = append(res.SplitTestScores[name], scores)
			res.MeanTestScore[name] = append(res.MeanTestScore[name], stat.Mean(scores, nil))
			res.StdTestScore[name] = append(res.StdTestScore[name], popStd(scores))
		}
	}

	// competition ranking ("min" method), ties share the better rank
	primary := res.MeanTestScore[scoring[0]]
	order := make([]int, len(primary))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return primary[order[a]] > primary[order[b]] })
	res.RankTestScore = make([]int, len(primary))
	for pos, i := range order {
		if pos > 0 && primary[i] == primary[order[pos-1]] {
			res.RankTestScore[i] = res.RankTestScore[order[pos-1]]
			continue
		}
		res.RankTestScore[i] = pos + 1
	}
	return res
}

func newProgressBar(description string, max int, o *options) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(o.progress),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(o.progress)
		}),
	)
}

func (gs *GridSearchCV) requireFitted(method string) error {
	if gs.bestEstimator == nil {
		return cartErrors.NewNotFittedError("GridSearchCV", method)
	}
	return nil
}

// BestParams returns the winning candidate, nil before Fit.
func (gs *GridSearchCV) BestParams() map[string]any {
	if gs.bestEstimator == nil {
		return nil
	}
	return maps.Clone(gs.results.Params[gs.bestIndex])
}

// BestScore returns the mean cross-validated score of the best candidate.
func (gs *GridSearchCV) BestScore() float64 {
	if gs.bestEstimator == nil {
		return 0
	}
	return gs.results.MeanTestScore[gs.scoring][gs.bestIndex]
}

// BestIndex returns the row of the best candidate in CVResults, -1 before Fit.
func (gs *GridSearchCV) BestIndex() int {
	return gs.bestIndex
}

// BestEstimator returns the best candidate refitted on all data.
func (gs *GridSearchCV) BestEstimator() model.Classifier {
	return gs.bestEstimator
}

// CVResults returns the per-candidate score table.
func (gs *GridSearchCV) CVResults() *GridResults {
	return gs.results
}

// Predict predicts with the refitted best estimator.
func (gs *GridSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := gs.requireFitted("Predict"); err != nil {
		return nil, err
	}
	return gs.bestEstimator.Predict(X)
}

// Score scores X, y with the refitted best estimator.
func (gs *GridSearchCV) Score(X, y mat.Matrix) (float64, error) {
	if err := gs.requireFitted("Score"); err != nil {
		return 0, err
	}
	return gs.bestEstimator.Score(X, y)
}

