package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/cart/codegen"
	"github.com/ezoic/cart/core/model"
	"github.com/ezoic/cart/dataset"
	"github.com/ezoic/cart/metrics"
	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
	ms "github.com/ezoic/cart/sklearn/model_selection"
	"github.com/ezoic/cart/sklearn/tree"
	"github.com/ezoic/cart/viz"
)

const curveModelName = "DecisionTreeClassifier"

func (r *Runner) load(res *Result) error {
	d, err := dataset.Load(r.cfg.Data.Path, r.cfg.Data.Label)
	if err != nil {
		return err
	}
	res.Data = d

	r.logger.Info("Dataset loaded",
		log.PathKey, r.cfg.Data.Path,
		log.SamplesKey, d.Rows(),
		log.FeaturesKey, d.Features(),
		log.ClassesKey, len(d.Classes),
	)
	r.p.kv("path", r.cfg.Data.Path)
	r.p.kv("rows", d.Rows())
	r.p.kv("features", strings.Join(d.FeatureNames, ", "))
	r.p.kv("label", fmt.Sprintf("%s %v", d.LabelName, d.Classes))
	return nil
}

func (r *Runner) newTree(res *Result, seed int64, opts ...tree.DecisionTreeClassifierOption) *tree.DecisionTreeClassifier {
	opts = append(opts, tree.WithDTRandomState(seed), tree.WithFeatureNames(res.Data.FeatureNames))
	return tree.NewDecisionTreeClassifier(opts...)
}

func (r *Runner) baseline(res *Result) error {
	d := res.Data
	dt := r.newTree(res, r.cfg.Baseline.Seed)
	if err := dt.Fit(d.X, d.Y); err != nil {
		return err
	}
	eval, err := evaluate(dt, d.X, d.Y, d.Classes)
	if err != nil {
		return err
	}
	res.Baseline = eval

	r.logger.Info("Baseline evaluated on the training data",
		log.PhaseKey, log.PhaseTraining,
		log.RandomSeedKey, r.cfg.Baseline.Seed,
		log.AccuracyKey, eval.Report.Accuracy,
		log.ROCAUCKey, eval.ROCAUC,
	)
	r.p.subsection(fmt.Sprintf("In-sample (random_state=%d)", r.cfg.Baseline.Seed))
	r.printEvaluation(eval)
	return nil
}

func (r *Runner) holdout(res *Result) error {
	d := res.Data
	XTrain, XTest, yTrain, yTest, err := ms.TrainTestSplit(d.X, d.Y, r.cfg.Holdout.TestSize, r.cfg.Holdout.SplitSeed)
	if err != nil {
		return err
	}
	dt := r.newTree(res, r.cfg.Holdout.ModelSeed)
	if err := dt.Fit(XTrain, yTrain); err != nil {
		return err
	}
	if res.HoldoutTrain, err = evaluate(dt, XTrain, yTrain, d.Classes); err != nil {
		return err
	}
	if res.HoldoutTest, err = evaluate(dt, XTest, yTest, d.Classes); err != nil {
		return err
	}

	nTrain, _ := XTrain.Dims()
	nTest, _ := XTest.Dims()
	r.logger.Info("Holdout evaluated",
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, nTest,
		log.AccuracyKey, res.HoldoutTest.Report.Accuracy,
		log.ROCAUCKey, res.HoldoutTest.ROCAUC,
	)
	r.p.subsection(fmt.Sprintf("Train error (%d rows)", nTrain))
	r.printEvaluation(res.HoldoutTrain)
	r.p.subsection(fmt.Sprintf("Test error (%d rows)", nTest))
	r.printEvaluation(res.HoldoutTest)
	return nil
}

func (r *Runner) crossValidate(res *Result) error {
	d := res.Data
	dt := r.newTree(res, r.cfg.CV.ModelSeed)
	if err := dt.Fit(d.X, d.Y); err != nil {
		return err
	}
	res.CVModel = dt

	cv, err := ms.CrossValidate(dt, d.X, d.Y, r.cvOptions(r.cfg.CV.Folds, r.cfg.CV.Scoring...)...)
	if err != nil {
		return err
	}
	res.BaselineCV = cv
	r.printCV(cv, r.cfg.CV.Scoring)
	return nil
}

func (r *Runner) search(res *Result) error {
	d := res.Data
	r.p.kv("base params", formatParams(res.CVModel.GetParams()))

	grid := ms.ParamGrid{
		"max_depth":         r.cfg.Search.MaxDepth.Values(),
		"min_samples_split": r.cfg.Search.MinSamplesSplit.Values(),
	}
	opts := append(r.cvOptions(r.cfg.Search.Folds, r.cfg.Search.Scoring), ms.WithVerbose(r.cfg.Search.Verbose))
	gs := ms.NewGridSearchCV(res.CVModel, grid, opts...)
	if err := gs.Fit(d.X, d.Y); err != nil {
		return err
	}
	res.Search = gs

	r.logger.Info("Grid search finished",
		log.OperationKey, log.OperationSearch,
		log.HyperParamsKey, formatParams(gs.BestParams()),
		log.ScoringKey, r.cfg.Search.Scoring,
		log.ScoreKey, gs.BestScore(),
	)
	if res.BaselineCV != nil {
		if base, ok := res.BaselineCV.TestScores[r.cfg.Search.Scoring]; ok && gs.BestScore() < stat.Mean(base, nil) {
			r.logger.Warn("Best grid score is below the default model's cross-validated score",
				log.ScoringKey, r.cfg.Search.Scoring,
				log.ScoreKey, gs.BestScore(),
			)
		}
	}
	r.p.kv("best params", formatParams(gs.BestParams()))
	r.p.score("best score ("+r.cfg.Search.Scoring+")", gs.BestScore())

	sample, err := d.Sample(1, r.cfg.Data.SampleSeed)
	if err != nil {
		return err
	}
	pred, err := gs.Predict(sample.X)
	if err != nil {
		return err
	}
	res.Sample = sample
	res.SamplePrediction = pred.At(0, 0)
	r.p.kv("sample "+formatRow(sample.Row(0)), classLabel(d, res.SamplePrediction))
	return nil
}

func (r *Runner) final(res *Result) error {
	d := res.Data
	best := res.Search.BestParams()

	opts, err := treeOptions(best)
	if err != nil {
		return err
	}
	final := r.newTree(res, r.cfg.CV.ModelSeed, opts...)
	if err := final.Fit(d.X, d.Y); err != nil {
		return err
	}

	// same hyperparameters reached through SetParams on the existing model
	if err := res.CVModel.SetParams(best); err != nil {
		return err
	}
	if err := res.CVModel.Fit(d.X, d.Y); err != nil {
		return err
	}
	if err := sameTree(final, res.CVModel, d.X); err != nil {
		return err
	}
	res.Final = final

	r.logger.Info("Final model fitted",
		log.OperationKey, log.OperationFit,
		log.HyperParamsKey, formatParams(final.GetParams()),
		log.DepthKey, final.GetDepth(),
		log.LeavesKey, final.GetNLeaves(),
	)
	r.p.kv("params", formatParams(final.GetParams()))
	r.p.check("fresh instance and SetParams produce the same tree", true)

	cv, err := ms.CrossValidate(final, d.X, d.Y, r.cvOptions(r.cfg.CV.Folds, r.cfg.CV.Scoring...)...)
	if err != nil {
		return err
	}
	res.FinalCV = cv
	r.printCV(cv, r.cfg.CV.Scoring)
	return nil
}

func (r *Runner) importance(res *Result) error {
	ranking, err := res.Final.RankFeatureImportances(res.Data.FeatureNames)
	if err != nil {
		return err
	}
	res.Importances = ranking

	top := min(r.cfg.Output.ImportanceTop, len(ranking))
	for _, fi := range ranking[:top] {
		r.p.score(fi.Name, fi.Value)
	}
	if path := r.cfg.Output.ImportancePlot; path != "" {
		if err := viz.PlotImportance(ranking, top, path); err != nil {
			return err
		}
		r.addArtifact(res, "importance chart", path)
	}
	return nil
}

func (r *Runner) curves(res *Result) error {
	d := res.Data
	specs := []struct {
		param   string
		values  []any
		scoring string
	}{
		{"max_depth", r.cfg.Curves.MaxDepth.Values(), r.cfg.Curves.FinalScoring},
		{"max_depth", r.cfg.Curves.MaxDepth.Values(), r.cfg.Curves.Scoring},
		{"min_samples_split", r.cfg.Curves.MinSamplesSplit.Values(), r.cfg.Curves.Scoring},
	}

	for _, s := range specs {
		curve, err := ms.ValidationCurve(res.Final, d.X, d.Y, s.param, s.values,
			r.cvOptions(r.cfg.Curves.Folds, s.scoring)...)
		if err != nil {
			return err
		}
		res.Curves = append(res.Curves, curve)

		r.p.subsection(fmt.Sprintf("%s (%s, cv=%d)", s.param, s.scoring, r.cfg.Curves.Folds))
		train, test := curve.MeanTrain(), curve.MeanTest()
		fmt.Fprintf(r.out, "%-17s %10s %10s\n", s.param, "train", "validation")
		for i, v := range curve.Values {
			fmt.Fprintf(r.out, "%-17v %10.4f %10.4f\n", v, train[i], test[i])
		}

		if dir := r.cfg.Output.CurveDir; dir != "" {
			path := filepath.Join(dir, fmt.Sprintf("validation_curve_%s_%s.png", s.param, s.scoring))
			if err := viz.PlotValidationCurve(curve, curveModelName, path); err != nil {
				return err
			}
			r.addArtifact(res, "validation curve", path)
		}
	}
	return nil
}

func (r *Runner) treeImage(res *Result) error {
	final := res.Final
	r.p.kv("depth", final.GetDepth())
	r.p.kv("leaves", final.GetNLeaves())
	r.p.kv("nodes", final.NodeCount())

	dotPath, imagePath := r.cfg.Output.TreeDot, r.cfg.Output.TreeImage
	if dotPath == "" && imagePath == "" {
		return nil
	}
	dot, err := tree.ExportGraphviz(final, tree.GraphvizOptions{Filled: true})
	if err != nil {
		return err
	}
	if dotPath != "" {
		if err := writeFile(dotPath, []byte(dot)); err != nil {
			return err
		}
		r.addArtifact(res, "tree DOT", dotPath)
	}
	if imagePath != "" {
		format := strings.TrimPrefix(filepath.Ext(imagePath), ".")
		if format == "" {
			format = "png"
		}
		if err := tree.RenderGraph(dot, format, imagePath); err != nil {
			return err
		}
		r.addArtifact(res, "tree image", imagePath)
	}
	return nil
}

func (r *Runner) rules(res *Result) error {
	text, err := tree.ExportText(res.Final, tree.TextOptions{})
	if err != nil {
		return err
	}
	res.Rules = text
	r.p.block(text)
	return nil
}

func (r *Runner) codegen(res *Result) error {
	d := res.Data
	prog, err := codegen.Compile(res.Final)
	if err != nil {
		return err
	}
	if err := prog.Verify(res.Final, d.X); err != nil {
		return err
	}
	res.Program = prog

	table := strings.TrimSuffix(filepath.Base(r.cfg.Data.Path), filepath.Ext(r.cfg.Data.Path))
	excel, err := prog.Excel(2)
	if err != nil {
		return err
	}
	res.Code = GeneratedCode{
		Go:     prog.Go("predictWithRules"),
		Python: prog.Python(),
		SQL:    prog.SQL(table),
		Excel:  excel,
	}

	r.logger.Info("Rules compiled",
		log.OperationKey, log.OperationExport,
		log.DepthKey, prog.Depth(),
		log.SamplesKey, d.Rows(),
	)
	r.p.check(fmt.Sprintf("rules agree with the model on all %d rows", d.Rows()), true)
	r.p.subsection("python/code")
	r.p.block(res.Code.Python)
	r.p.subsection("sql")
	r.p.block(res.Code.SQL)
	r.p.subsection("excel")
	r.p.block(res.Code.Excel)
	r.p.subsection("go")
	r.p.block(res.Code.Go)
	return nil
}

func (r *Runner) rulePrediction(res *Result) error {
	d := res.Data
	rows := r.exampleRows(d)
	for i, row := range rows {
		want, err := res.Final.PredictRow(row)
		if err != nil {
			return err
		}
		got := res.Program.Predict(row)
		res.Examples = append(res.Examples, RulePrediction{Row: row, Model: want, Rules: got})
		if got != want {
			return cartErrors.NewPredictionMismatchError("rules", i, want, got)
		}
		r.p.kv("x = "+formatRow(row), classLabel(d, got))
	}

	if path := r.cfg.Output.Workbook; path != "" {
		X := mat.NewDense(len(rows), d.Features(), nil)
		for i, row := range rows {
			X.SetRow(i, row)
		}
		if err := ensureDir(path); err != nil {
			return err
		}
		if err := res.Program.WriteWorkbook(path, X); err != nil {
			return err
		}
		r.addArtifact(res, "rule workbook", path)
	}
	return nil
}

func (r *Runner) persistence(res *Result) error {
	d := res.Data
	path := r.cfg.Output.Model
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := model.SaveModel(res.Final, path); err != nil {
		return cartErrors.Wrap(err, "failed to save model")
	}
	r.addArtifact(res, "model", path)

	loaded := tree.NewDecisionTreeClassifier()
	if err := model.LoadModel(loaded, path); err != nil {
		return cartErrors.Wrap(err, "failed to load model")
	}

	want, err := res.Final.Predict(d.X)
	if err != nil {
		return err
	}
	got, err := loaded.Predict(d.X)
	if err != nil {
		return err
	}
	for i := 0; i < d.Rows(); i++ {
		if want.At(i, 0) != got.At(i, 0) {
			return cartErrors.NewPredictionMismatchError("round_trip", i, want.At(i, 0), got.At(i, 0))
		}
	}
	for i, row := range r.exampleRows(d) {
		w, err := res.Final.PredictRow(row)
		if err != nil {
			return err
		}
		g, err := loaded.PredictRow(row)
		if err != nil {
			return err
		}
		if w != g {
			return cartErrors.NewPredictionMismatchError("round_trip", d.Rows()+i, w, g)
		}
		r.p.kv("reloaded x = "+formatRow(row), classLabel(d, g))
	}
	res.Reloaded = loaded
	r.p.check("reloaded model predicts identically", true)
	return nil
}

// exampleRows returns ExampleRows, or the first data row when the dataset is
// not eight columns wide.
func (r *Runner) exampleRows(d *dataset.Dataset) [][]float64 {
	if d.Features() == len(ExampleRows[0]) {
		return ExampleRows
	}
	r.logger.Warn("Example rows do not fit the dataset, using its first row",
		log.FeaturesKey, d.Features(),
	)
	return [][]float64{d.Row(0)}
}

func (r *Runner) addArtifact(res *Result, kind, path string) {
	res.Artifacts = append(res.Artifacts, path)
	r.logger.Info("Artifact written", log.PathKey, path, "artifact", kind)
	r.p.artifact(kind, path)
}

func (r *Runner) printEvaluation(e *Evaluation) {
	r.p.block(e.Report.String())
	r.p.score("roc_auc", e.ROCAUC)
}

func (r *Runner) printCV(cv *ms.CVResults, scoring []string) {
	for _, name := range scoring {
		r.p.score("test_"+name+" mean", cv.MeanTest(name))
		r.logger.Debug("Cross-validation score",
			log.OperationKey, log.OperationCrossValidate,
			log.ScoringKey, name,
			log.ScoreKey, cv.MeanTest(name),
			log.FoldsKey, len(cv.TestScores[name]),
		)
	}
}

// evaluate predicts X and scores the predictions against y. classes are the
// dataset's label names; their codes 0..k-1 are the report rows.
func evaluate(dt *tree.DecisionTreeClassifier, X, y mat.Matrix, classes []string) (*Evaluation, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return nil, err
	}
	proba, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}

	labels := make([]float64, len(classes))
	for i := range labels {
		labels[i] = float64(i)
	}
	yTrue := column(y, 0)
	rep, err := metrics.ClassificationReport(yTrue, column(pred, 0), metrics.ReportOptions{
		Labels:      labels,
		TargetNames: classes,
	})
	if err != nil {
		return nil, err
	}
	auc, err := metrics.AUC(yTrue, positiveProba(dt, proba, labels[len(labels)-1]))
	if err != nil {
		return nil, err
	}
	return &Evaluation{Report: rep, ROCAUC: auc}, nil
}

// positiveProba returns the probability column of class pos, or zeros when the
// model never saw pos.
func positiveProba(dt *tree.DecisionTreeClassifier, proba mat.Matrix, pos float64) *mat.VecDense {
	n, _ := proba.Dims()
	for j, c := range dt.Classes() {
		if c == pos {
			return column(proba, j)
		}
	}
	return mat.NewVecDense(n, nil)
}

func column(m mat.Matrix, j int) *mat.VecDense {
	n, _ := m.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, m.At(i, j))
	}
	return v
}

// treeOptions turns grid parameters into constructor options.
func treeOptions(params map[string]any) ([]tree.DecisionTreeClassifierOption, error) {
	var opts []tree.DecisionTreeClassifierOption
	for key, value := range params {
		var ok bool
		switch key {
		case "max_depth":
			var n int
			if n, ok = value.(int); ok {
				opts = append(opts, tree.WithMaxDepth(n))
			}
		case "min_samples_split":
			var n int
			if n, ok = value.(int); ok {
				opts = append(opts, tree.WithMinSamplesSplit(n))
			}
		case "min_samples_leaf":
			var n int
			if n, ok = value.(int); ok {
				opts = append(opts, tree.WithMinSamplesLeaf(n))
			}
		case "criterion":
			var s string
			if s, ok = value.(string); ok {
				opts = append(opts, tree.WithCriterion(s))
			}
		case "max_features":
			var s string
			if s, ok = value.(string); ok {
				opts = append(opts, tree.WithMaxFeatures(s))
			}
		case "min_impurity_decrease":
			var f float64
			if f, ok = value.(float64); ok {
				opts = append(opts, tree.WithMinImpurityDecrease(f))
			}
		default:
			return nil, cartErrors.NewValidationError(key, "no constructor option for parameter", value)
		}
		if !ok {
			return nil, cartErrors.NewValidationError(key, "unsupported value type", value)
		}
	}
	return opts, nil
}

// sameTree fails unless a and b predict identically on X and print the same rules.
func sameTree(a, b *tree.DecisionTreeClassifier, X mat.Matrix) error {
	pa, err := a.Predict(X)
	if err != nil {
		return err
	}
	pb, err := b.Predict(X)
	if err != nil {
		return err
	}
	n, _ := X.Dims()
	for i := 0; i < n; i++ {
		if pa.At(i, 0) != pb.At(i, 0) {
			return cartErrors.NewPredictionMismatchError("construction", i, pa.At(i, 0), pb.At(i, 0))
		}
	}

	opts := tree.TextOptions{MaxDepth: 1 << 10, ShowWeights: true}
	ta, err := tree.ExportText(a, opts)
	if err != nil {
		return err
	}
	tb, err := tree.ExportText(b, opts)
	if err != nil {
		return err
	}
	if ta != tb {
		return cartErrors.New("construction paths produced different trees")
	}
	return nil
}

func classLabel(d *dataset.Dataset, code float64) string {
	i := int(code)
	if float64(i) != code || i < 0 || i >= len(d.Classes) {
		return fmt.Sprint(code)
	}
	return d.Classes[i]
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cartErrors.Wrap(err, "failed to create output directory")
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cartErrors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
