// Package tree implements a CART decision tree classifier compatible with
// scikit-learn's DecisionTreeClassifier, together with its introspection and
// export helpers (feature importances, text rules, Graphviz DOT, scikit-learn
// array interop).
package tree

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/cart/core/model"
	"github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/pkg/log"
)

const (
	modelName = "DecisionTreeClassifier"

	// featureThreshold is the smallest gap between two sorted feature values
	// that still yields a split candidate.
	featureThreshold = 1e-7

	// epsilon guards impurity comparisons against rounding noise.
	epsilon = 2.220446049250313e-16
)

// TreeNode represents a node in the decision tree
type TreeNode struct {
	ID           int       // Preorder node index, root is 0
	IsLeaf       bool      // Whether this is a leaf node
	Feature      int       // Feature index for split (internal nodes)
	Threshold    float64   // Samples with X[Feature] <= Threshold go left
	Left         *TreeNode // Left child (values <= threshold)
	Right        *TreeNode // Right child (values > threshold)
	ClassCounts  []float64 // Training samples per class reaching this node
	PredictClass int       // Index into Classes() of the majority class
	Impurity     float64   // Node impurity
	NSamples     int       // Number of samples at this node
	Depth        int       // Depth of this node in the tree
}

// DecisionTreeClassifier implements a CART decision tree for classification
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	criterion           string  // "gini", "entropy" or "log_loss"
	maxDepth            int     // Maximum depth of tree (0 = unlimited)
	minSamplesSplit     int     // Minimum samples to split a node
	minSamplesLeaf      int     // Minimum samples in a leaf
	maxFeatures         string  // "", "sqrt", "log2" or an integer
	minImpurityDecrease float64 // Minimum weighted impurity decrease for a split
	randomState         int64   // Random seed (negative = unseeded)

	featureNames []string

	// Fitted state
	root               *TreeNode
	classes            []float64
	featureImportances []float64
	nodeCount          int
}

// DecisionTreeClassifierOption is a functional option
type DecisionTreeClassifierOption func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a new decision tree classifier.
//
// デフォルト値は scikit-learn と同じ:
// gini, 深さ無制限, min_samples_split=2, min_samples_leaf=1, 全特徴量, random_state なし
//
// 使用例:
//
//	clf := tree.NewDecisionTreeClassifier(
//	    tree.WithMaxDepth(5),
//	    tree.WithMinSamplesSplit(4),
//	    tree.WithDTRandomState(17),
//	)
//	err := clf.Fit(X, y)
func NewDecisionTreeClassifier(opts ...DecisionTreeClassifierOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:               model.NewStateManager(),
		criterion:           "gini",
		maxDepth:            0,
		minSamplesSplit:     2,
		minSamplesLeaf:      1,
		maxFeatures:         "",
		minImpurityDecrease: 0.0,
		randomState:         -1,
	}

	for _, opt := range opts {
		opt(dt)
	}

	return dt
}

// WithCriterion sets the splitting criterion
func WithCriterion(criterion string) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithMaxDepth sets the maximum tree depth (0 = unlimited)
func WithMaxDepth(depth int) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets minimum samples to split
func WithMinSamplesSplit(n int) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets minimum samples in leaf
func WithMinSamplesLeaf(n int) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets the number of features examined per split
func WithMaxFeatures(maxFeatures string) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxFeatures = maxFeatures
	}
}

// WithMinImpurityDecrease sets the minimum weighted impurity decrease
func WithMinImpurityDecrease(v float64) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minImpurityDecrease = v
	}
}

// WithDTRandomState sets the random seed
func WithDTRandomState(seed int64) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.randomState = seed
	}
}

// WithFeatureNames names the columns of X for rules and exports
func WithFeatureNames(names []string) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.featureNames = slices.Clone(names)
	}
}

// Fit trains the decision tree. X is n×p, y is an n×1 column of class labels.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeClassifier.Fit")
	const op = "DecisionTreeClassifier.Fit"
	start := time.Now()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError(op, 1, yCols, 1)
	}
	if err := dt.validateParams(); err != nil {
		return err
	}
	if len(dt.featureNames) > 0 && len(dt.featureNames) != nFeatures {
		return errors.NewValidationError("feature_names",
			fmt.Sprintf("expected %d names", nFeatures), len(dt.featureNames))
	}

	cols := make([][]float64, nFeatures)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
		for i, v := range cols[j] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValueError(op,
					fmt.Sprintf("input contains NaN or infinity at row %d, column %d", i, j))
			}
		}
	}

	classes, yIdx := encodeClasses(mat.Col(nil, 0, y))

	dt.state.Reset()
	dt.classes = classes

	b := &builder{
		dt:          dt,
		cols:        cols,
		y:           yIdx,
		nClasses:    len(classes),
		nTotal:      float64(nSamples),
		maxFeatures: dt.resolveMaxFeatures(nFeatures),
		rng:         newRNG(dt.randomState),
		importances: make([]float64, nFeatures),
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	dt.root = b.build(indices, 0)
	dt.nodeCount = b.nextID

	normalize(b.importances)
	dt.featureImportances = b.importances

	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()

	log.GetLoggerWithName(modelName).Debug("Fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.DepthKey, dt.GetDepth(),
		log.LeavesKey, dt.GetNLeaves(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// newRNG returns a fresh generator for one Fit call.
func newRNG(seed int64) *rand.Rand {
	s := uint64(seed)
	if seed < 0 {
		s = rand.Uint64()
	}
	return rand.New(rand.NewPCG(s, s))
}

// encodeClasses returns the sorted unique labels and each sample's class index.
func encodeClasses(y []float64) ([]float64, []int) {
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	idx := make([]int, len(y))
	for i, v := range y {
		idx[i], _ = slices.BinarySearch(classes, v)
	}
	return classes, idx
}

func normalize(values []float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum > 0 {
		for i := range values {
			values[i] /= sum
		}
	}
}

// validateParams checks the hyperparameters before fitting
func (dt *DecisionTreeClassifier) validateParams() error {
	switch dt.criterion {
	case "gini", "entropy", "log_loss":
	default:
		return errors.NewValidationError("criterion", "must be one of gini, entropy, log_loss", dt.criterion)
	}
	if dt.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 1, or 0 for unlimited", dt.maxDepth)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", dt.minSamplesLeaf)
	}
	if dt.minImpurityDecrease < 0 || math.IsNaN(dt.minImpurityDecrease) {
		return errors.NewValidationError("min_impurity_decrease", "must be >= 0", dt.minImpurityDecrease)
	}
	switch dt.maxFeatures {
	case "", "sqrt", "log2":
	default:
		n, err := strconv.Atoi(dt.maxFeatures)
		if err != nil || n < 1 {
			return errors.NewValidationError("max_features", "must be sqrt, log2, a positive integer or empty", dt.maxFeatures)
		}
	}
	return nil
}

// resolveMaxFeatures turns max_features into a feature count for nFeatures columns
func (dt *DecisionTreeClassifier) resolveMaxFeatures(nFeatures int) int {
	k := nFeatures
	switch dt.maxFeatures {
	case "":
	case "sqrt":
		k = int(math.Sqrt(float64(nFeatures)))
	case "log2":
		k = int(math.Log2(float64(nFeatures)))
	default:
		k, _ = strconv.Atoi(dt.maxFeatures)
	}
	return max(1, min(k, nFeatures))
}

// impurity computes the node impurity from class counts
func impurity(criterion string, counts []float64, total float64) float64 {
	if total <= 0 {
		return 0.0
	}
	switch criterion {
	case "entropy", "log_loss":
		e := 0.0
		for _, c := range counts {
			if c > 0 {
				p := c / total
				e -= p * math.Log2(p)
			}
		}
		return e
	default:
		sumSquared := 0.0
		for _, c := range counts {
			p := c / total
			sumSquared += p * p
		}
		return 1.0 - sumSquared
	}
}

// builder grows one tree depth-first
type builder struct {
	dt          *DecisionTreeClassifier
	cols        [][]float64
	y           []int
	nClasses    int
	nTotal      float64
	maxFeatures int
	rng         *rand.Rand
	importances []float64
	nextID      int
}

type split struct {
	found     bool
	feature   int
	threshold float64
	decrease  float64
	impLeft   float64
	impRight  float64
	nLeft     int
}

func (b *builder) counts(indices []int) []float64 {
	counts := make([]float64, b.nClasses)
	for _, i := range indices {
		counts[b.y[i]]++
	}
	return counts
}

// build recursively builds the subtree over the given samples
func (b *builder) build(indices []int, depth int) *TreeNode {
	dt := b.dt
	n := len(indices)
	counts := b.counts(indices)
	imp := impurity(dt.criterion, counts, float64(n))

	node := &TreeNode{
		ID:           b.nextID,
		ClassCounts:  counts,
		PredictClass: argmax(counts),
		Impurity:     imp,
		NSamples:     n,
		Depth:        depth,
	}
	b.nextID++

	if dt.shouldStop(n, imp, depth) {
		node.IsLeaf = true
		return node
	}

	s := b.findBestSplit(indices, imp)
	if !s.found {
		node.IsLeaf = true
		return node
	}

	nL, nR := float64(s.nLeft), float64(n-s.nLeft)
	fn := float64(n)
	improvement := (fn / b.nTotal) * (imp - nL/fn*s.impLeft - nR/fn*s.impRight)
	if improvement+epsilon < dt.minImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	left := make([]int, 0, s.nLeft)
	right := make([]int, 0, n-s.nLeft)
	col := b.cols[s.feature]
	for _, i := range indices {
		if col[i] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = s.feature
	node.Threshold = s.threshold
	b.importances[s.feature] += fn*imp - nL*s.impLeft - nR*s.impRight

	node.Left = b.build(left, depth+1)
	node.Right = b.build(right, depth+1)
	return node
}

// shouldStop checks stopping criteria that do not need a split search
func (dt *DecisionTreeClassifier) shouldStop(nSamples int, imp float64, depth int) bool {
	if dt.maxDepth > 0 && depth >= dt.maxDepth {
		return true
	}
	if nSamples < dt.minSamplesSplit || nSamples < 2*dt.minSamplesLeaf {
		return true
	}
	return imp <= epsilon
}

// findBestSplit sweeps the candidate features in a seeded random order and
// keeps the first strictly best impurity decrease.
func (b *builder) findBestSplit(indices []int, parentImpurity float64) split {
	dt := b.dt
	n := len(indices)
	best := split{decrease: math.Inf(-1)}

	sorted := make([]int, n)
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)
	total := b.counts(indices)

	visited := 0
	for _, f := range b.rng.Perm(len(b.cols)) {
		if visited >= b.maxFeatures {
			break
		}
		col := b.cols[f]
		copy(sorted, indices)
		slices.SortStableFunc(sorted, func(a, c int) int {
			switch {
			case col[a] < col[c]:
				return -1
			case col[a] > col[c]:
				return 1
			}
			return 0
		})

		if col[sorted[n-1]] <= col[sorted[0]]+featureThreshold {
			continue // constant feature
		}
		visited++

		clear(left)
		copy(right, total)
		for p := 0; p < n-1; p++ {
			c := b.y[sorted[p]]
			left[c]++
			right[c]--

			v, next := col[sorted[p]], col[sorted[p+1]]
			if next <= v+featureThreshold {
				continue
			}
			nL := p + 1
			nR := n - nL
			if nL < dt.minSamplesLeaf || nR < dt.minSamplesLeaf {
				continue
			}

			impL := impurity(dt.criterion, left, float64(nL))
			impR := impurity(dt.criterion, right, float64(nR))
			decrease := parentImpurity - (float64(nL)*impL+float64(nR)*impR)/float64(n)
			if decrease > best.decrease {
				threshold := v/2.0 + next/2.0
				if threshold == next || math.IsInf(threshold, 0) {
					threshold = v
				}
				best = split{
					found:     true,
					feature:   f,
					threshold: threshold,
					decrease:  decrease,
					impLeft:   impL,
					impRight:  impR,
					nLeft:     nL,
				}
			}
		}
	}
	return best
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// leaf returns the leaf reached by row x
func (dt *DecisionTreeClassifier) leaf(x func(j int) float64) *TreeNode {
	node := dt.root
	for !node.IsLeaf {
		if x(node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

func (dt *DecisionTreeClassifier) checkPredictInput(method string, X mat.Matrix) error {
	if err := dt.state.RequireFitted(modelName, method); err != nil {
		return err
	}
	_, nFeatures := X.Dims()
	return dt.state.RequireFeatures(modelName+"."+method, nFeatures)
}

// Predict returns an n×1 matrix of predicted class labels
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredictInput("Predict", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		row := i
		node := dt.leaf(func(j int) float64 { return X.At(row, j) })
		predictions.Set(i, 0, dt.classes[node.PredictClass])
	}
	return predictions, nil
}

// PredictRow predicts the class label of a single feature vector
func (dt *DecisionTreeClassifier) PredictRow(x []float64) (float64, error) {
	if err := dt.state.RequireFitted(modelName, "PredictRow"); err != nil {
		return 0, err
	}
	if err := dt.state.RequireFeatures(modelName+".PredictRow", len(x)); err != nil {
		return 0, err
	}
	node := dt.leaf(func(j int) float64 { return x[j] })
	return dt.classes[node.PredictClass], nil
}

// PredictProba returns class probabilities, one column per entry of Classes()
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredictInput("PredictProba", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	nClasses := len(dt.classes)
	probas := mat.NewDense(nSamples, nClasses, nil)
	for i := 0; i < nSamples; i++ {
		row := i
		node := dt.leaf(func(j int) float64 { return X.At(row, j) })
		total := 0.0
		for _, c := range node.ClassCounts {
			total += c
		}
		for j := 0; j < nClasses; j++ {
			if total > 0 {
				probas.Set(i, j, node.ClassCounts[j]/total)
			}
		}
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0.0, err
	}

	nSamples, _ := X.Dims()
	yRows, _ := y.Dims()
	if yRows != nSamples {
		return 0.0, errors.NewDimensionError("DecisionTreeClassifier.Score", nSamples, yRows, 0)
	}

	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// IsFitted reports whether the model has been fitted
func (dt *DecisionTreeClassifier) IsFitted() bool {
	return dt.state.IsFitted()
}

// GetParams returns the model hyperparameters under their scikit-learn names
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             dt.criterion,
		"max_depth":             dt.maxDepth,
		"min_samples_split":     dt.minSamplesSplit,
		"min_samples_leaf":      dt.minSamplesLeaf,
		"max_features":          dt.maxFeatures,
		"min_impurity_decrease": dt.minImpurityDecrease,
		"random_state":          dt.randomState,
	}
}

// SetParams sets hyperparameters and discards any fitted tree.
//
// Numeric values may be any Go integer or float kind; a float must be integral
// for integer parameters. A nil max_depth means unlimited, a nil random_state
// means unseeded.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	next := *dt
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := params[key]
		var ok bool
		switch key {
		case "criterion":
			next.criterion, ok = value.(string)
		case "max_depth":
			if value == nil {
				next.maxDepth, ok = 0, true
			} else {
				next.maxDepth, ok = toInt(value)
			}
		case "min_samples_split":
			next.minSamplesSplit, ok = toInt(value)
		case "min_samples_leaf":
			next.minSamplesLeaf, ok = toInt(value)
		case "max_features":
			switch v := value.(type) {
			case nil:
				next.maxFeatures, ok = "", true
			case string:
				next.maxFeatures, ok = v, true
			default:
				var n int
				n, ok = toInt(v)
				next.maxFeatures = strconv.Itoa(n)
			}
		case "min_impurity_decrease":
			next.minImpurityDecrease, ok = toFloat(value)
		case "random_state":
			if value == nil {
				next.randomState, ok = -1, true
			} else {
				var n int
				n, ok = toInt(value)
				next.randomState = int64(n)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter for DecisionTreeClassifier", value)
		}
		if !ok {
			return errors.NewValidationError(key, "unsupported value type", value)
		}
	}
	if err := next.validateParams(); err != nil {
		return err
	}

	dt.criterion = next.criterion
	dt.maxDepth = next.maxDepth
	dt.minSamplesSplit = next.minSamplesSplit
	dt.minSamplesLeaf = next.minSamplesLeaf
	dt.maxFeatures = next.maxFeatures
	dt.minImpurityDecrease = next.minImpurityDecrease
	dt.randomState = next.randomState
	dt.resetFitted()
	return nil
}

func (dt *DecisionTreeClassifier) resetFitted() {
	dt.state.Reset()
	dt.root = nil
	dt.classes = nil
	dt.featureImportances = nil
	dt.nodeCount = 0
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	i, ok := toInt(v)
	return float64(i), ok
}

// Clone returns an unfitted classifier with the same hyperparameters
func (dt *DecisionTreeClassifier) Clone() model.Classifier {
	return dt.CloneTree()
}

// CloneTree is Clone with the concrete return type
func (dt *DecisionTreeClassifier) CloneTree() *DecisionTreeClassifier {
	return NewDecisionTreeClassifier(
		WithCriterion(dt.criterion),
		WithMaxDepth(dt.maxDepth),
		WithMinSamplesSplit(dt.minSamplesSplit),
		WithMinSamplesLeaf(dt.minSamplesLeaf),
		WithMaxFeatures(dt.maxFeatures),
		WithMinImpurityDecrease(dt.minImpurityDecrease),
		WithDTRandomState(dt.randomState),
		WithFeatureNames(dt.featureNames),
	)
}

// FeatureImportances returns the normalized total impurity decrease per feature.
// The values are non-negative and sum to 1 unless the tree is a single leaf, in
// which case they are all zero.
func (dt *DecisionTreeClassifier) FeatureImportances() []float64 {
	return slices.Clone(dt.featureImportances)
}

// Root returns the root node of the fitted tree, nil before Fit
func (dt *DecisionTreeClassifier) Root() *TreeNode {
	return dt.root
}

// Classes returns the sorted class labels seen during Fit
func (dt *DecisionTreeClassifier) Classes() []float64 {
	return slices.Clone(dt.classes)
}

// NFeatures returns the number of features seen during Fit
func (dt *DecisionTreeClassifier) NFeatures() int {
	n, _ := dt.state.GetDimensions()
	return n
}

// FeatureNames returns the configured feature names, or feature_0..feature_{p-1}
func (dt *DecisionTreeClassifier) FeatureNames() []string {
	if len(dt.featureNames) > 0 {
		return slices.Clone(dt.featureNames)
	}
	names := make([]string, dt.NFeatures())
	for i := range names {
		names[i] = fmt.Sprintf("feature_%d", i)
	}
	return names
}

// SetFeatureNames replaces the feature names used by rules and exports
func (dt *DecisionTreeClassifier) SetFeatureNames(names []string) error {
	if dt.IsFitted() && len(names) != dt.NFeatures() {
		return errors.NewDimensionError("DecisionTreeClassifier.SetFeatureNames", dt.NFeatures(), len(names), 1)
	}
	dt.featureNames = slices.Clone(names)
	return nil
}

// GetDepth returns the depth of the tree (a single leaf has depth 0)
func (dt *DecisionTreeClassifier) GetDepth() int {
	if dt.root == nil {
		return 0
	}
	return maxDepth(dt.root)
}

func maxDepth(node *TreeNode) int {
	if node.IsLeaf {
		return node.Depth
	}
	return max(maxDepth(node.Left), maxDepth(node.Right))
}

// GetNLeaves returns the number of leaf nodes
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	return countLeaves(dt.root)
}

func countLeaves(node *TreeNode) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return 1
	}
	return countLeaves(node.Left) + countLeaves(node.Right)
}

// NodeCount returns the total number of nodes
func (dt *DecisionTreeClassifier) NodeCount() int {
	return dt.nodeCount
}

// Walk visits every node in preorder
func (dt *DecisionTreeClassifier) Walk(fn func(node *TreeNode)) {
	var walk func(*TreeNode)
	walk = func(node *TreeNode) {
		if node == nil {
			return
		}
		fn(node)
		walk(node.Left)
		walk(node.Right)
	}
	walk(dt.root)
}
