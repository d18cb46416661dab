// Package workflow runs the CART analysis end to end: load the data, fit and
// evaluate a baseline, tune it with a grid search, build the final model,
// inspect it and export it.
//
// Every step after the first consumes what the previous one produced, so a
// failing step stops the run and its error is returned as is.
package workflow

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/cart/codegen"
	"github.com/ezoic/cart/dataset"
	"github.com/ezoic/cart/internal/config"
	"github.com/ezoic/cart/metrics"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
	ms "github.com/ezoic/cart/sklearn/model_selection"
	"github.com/ezoic/cart/sklearn/tree"
)

// ExampleRows are the two hand-written diabetes rows the rules and the reloaded
// model are checked against.
var ExampleRows = [][]float64{
	{12, 13, 20, 23, 4, 55, 12, 7},
	{6, 148, 70, 35, 0, 30, 0.62, 50},
}

// Evaluation is a classification report plus ROC-AUC of the positive class.
type Evaluation struct {
	Report *metrics.Report
	ROCAUC float64
}

// GeneratedCode holds the rules compiled into each target notation.
type GeneratedCode struct {
	Go     string
	Python string
	SQL    string
	Excel  string
}

// RulePrediction compares the model and the compiled rules on one row.
type RulePrediction struct {
	Row   []float64
	Model float64
	Rules float64
}

// Result collects everything a run produced.
type Result struct {
	RunID string
	Data  *dataset.Dataset

	Baseline     *Evaluation
	HoldoutTrain *Evaluation
	HoldoutTest  *Evaluation

	// CVModel is fitted on all rows, cross-validated, and finally turned into
	// the final model in place through SetParams.
	CVModel    *tree.DecisionTreeClassifier
	BaselineCV *ms.CVResults

	Search           *ms.GridSearchCV
	Sample           *dataset.Dataset
	SamplePrediction float64

	Final   *tree.DecisionTreeClassifier
	FinalCV *ms.CVResults

	Importances []tree.FeatureImportance
	Curves      []*ms.CurveResult

	Rules    string
	Program  *codegen.Program
	Code     GeneratedCode
	Examples []RulePrediction

	Reloaded  *tree.DecisionTreeClassifier
	Artifacts []string
}

// Runner executes the workflow for one configuration.
type Runner struct {
	cfg      *config.Config
	out      io.Writer
	progress io.Writer
	logger   log.Logger
	runID    string
	p        *printer
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the console report is written (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithProgressWriter sets where the grid search progress bar is drawn (default os.Stderr).
func WithProgressWriter(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

// WithLogger replaces the global "workflow" logger.
func WithLogger(l log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRunID fixes the run identifier instead of drawing a random UUID.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// New creates a Runner. cfg must already be validated, see config.Load.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		out:      os.Stdout,
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.New().String()
	}
	if r.logger == nil {
		r.logger = log.GetLoggerWithName("workflow")
	}
	r.logger = r.logger.With(log.RunIDKey, r.runID)
	r.p = newPrinter(r.out)
	return r
}

// RunID returns the identifier attached to every log entry of the run.
func (r *Runner) RunID() string {
	return r.runID
}

type section struct {
	name  string
	title string
	run   func(*Result) error
}

func (r *Runner) sections() []section {
	return []section{
		{"load", "Data", r.load},
		{"baseline", "Modeling using CART", r.baseline},
		{"holdout", "Holdout evaluation", r.holdout},
		{"cross_validation", "Cross-validation", r.crossValidate},
		{"search", "Hyperparameter optimization with GridSearchCV", r.search},
		{"final", "Final model", r.final},
		{"importance", "Feature importance", r.importance},
		{"curves", "Model complexity with validation curves", r.curves},
		{"tree_image", "Visualizing the decision tree", r.treeImage},
		{"rules", "Decision rules", r.rules},
		{"codegen", "Python/SQL/Excel code of the decision rules", r.codegen},
		{"rule_prediction", "Prediction with the generated rules", r.rulePrediction},
		{"persistence", "Saving and loading the model", r.persistence},
	}
}

// Run executes every section in order and stops at the first failure. The
// partial Result is returned alongside the error.
func (r *Runner) Run(ctx context.Context) (res *Result, err error) {
	defer cartErrors.Recover(&err, "workflow.Run")

	res = &Result{RunID: r.runID}
	started := time.Now()
	r.logger.Info("Workflow started",
		log.PathKey, r.cfg.Data.Path,
		log.RandomSeedKey, r.cfg.CV.ModelSeed,
	)

	for i, s := range r.sections() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r.p.section(i+1, s.title)
		start := time.Now()
		if err := s.run(res); err != nil {
			r.logger.Error("Section failed", err, log.SectionKey, s.name)
			return res, cartErrors.Wrapf(err, "workflow section %s", s.name)
		}
		r.logger.Info("Section completed",
			log.SectionKey, s.name,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	r.logger.Info("Workflow completed",
		log.DurationMsKey, time.Since(started).Milliseconds(),
		"artifacts", len(res.Artifacts),
	)
	return res, nil
}

// cvOptions are the options shared by every cross-validated step.
func (r *Runner) cvOptions(folds int, scoring ...string) []ms.Option {
	return []ms.Option{
		ms.WithCV(folds),
		ms.WithScoring(scoring...),
		ms.WithNJobs(r.cfg.Search.NJobs),
		ms.WithProgressWriter(r.progress),
	}
}
