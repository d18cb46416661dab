// Package model_selection provides scikit-learn style data splitting, scoring,
// cross-validation, grid search and validation curves for model.Classifier.
package model_selection

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// Fold is one train/test partition of the sample indices.
type Fold struct {
	Train []int
	Test  []int
}

// Splitter generates cross-validation folds.
type Splitter interface {
	Split(X, y mat.Matrix) ([]Fold, error)
	NSplits() int
}

// KFold splits samples into k consecutive folds, optionally shuffled first.
// The first n % k folds get one extra sample.
type KFold struct {
	nSplits int
	shuffle bool
	seed    uint64
}

// NewKFold creates a k-fold splitter.
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	return &KFold{nSplits: nSplits, shuffle: shuffle, seed: seed}
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int { return kf.nSplits }

// Split generates train/test indices for each fold.
func (kf *KFold) Split(X, _ mat.Matrix) ([]Fold, error) {
	n, _ := X.Dims()
	if err := checkSplits(kf.nSplits, n); err != nil {
		return nil, err
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.shuffle {
		r := rand.New(rand.NewPCG(kf.seed, kf.seed))
		r.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	}

	testOf := make([]int, n)
	start := 0
	for f := 0; f < kf.nSplits; f++ {
		size := foldSize(n, kf.nSplits, f)
		for _, idx := range indices[start : start+size] {
			testOf[idx] = f
		}
		start += size
	}
	return buildFolds(testOf, kf.nSplits), nil
}

// StratifiedKFold splits samples into k folds that preserve the class proportions of y.
// Without shuffling the folds are fully deterministic: the samples of each class are
// dealt out in index order, classes in ascending label order.
type StratifiedKFold struct {
	nSplits int
	shuffle bool
	seed    uint64
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, seed uint64) *StratifiedKFold {
	return &StratifiedKFold{nSplits: nSplits, shuffle: shuffle, seed: seed}
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int { return skf.nSplits }

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]Fold, error) {
	n, _ := X.Dims()
	if err := checkSplits(skf.nSplits, n); err != nil {
		return nil, err
	}
	if yr, _ := y.Dims(); yr != n {
		return nil, cartErrors.NewDimensionError("StratifiedKFold.Split", n, yr, 0)
	}

	byClass := make(map[float64][]int)
	for i := 0; i < n; i++ {
		label := y.At(i, 0)
		byClass[label] = append(byClass[label], i)
	}
	labels := make([]float64, 0, len(byClass))
	for l := range byClass {
		labels = append(labels, l)
	}
	sort.Float64s(labels)

	var r *rand.Rand
	if skf.shuffle {
		r = rand.New(rand.NewPCG(skf.seed, skf.seed))
	}

	// Each class is split with KFold's sizing, but the folds are rotated per class so
	// the extra samples do not always land in the first folds.
	testOf := make([]int, n)
	offset := 0
	for _, l := range labels {
		indices := byClass[l]
		if r != nil {
			r.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		}
		start := 0
		for k := 0; k < skf.nSplits; k++ {
			f := (k + offset) % skf.nSplits
			size := foldSize(len(indices), skf.nSplits, k)
			for _, idx := range indices[start : start+size] {
				testOf[idx] = f
			}
			start += size
		}
		offset = (offset + len(indices)%skf.nSplits) % skf.nSplits
	}
	return buildFolds(testOf, skf.nSplits), nil
}

// TrainTestSplit shuffles the rows with seed and holds out ceil(testSize*n) of them
// for testing, like scikit-learn's train_test_split.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed uint64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, _ := X.Dims()
	if yr, _ := y.Dims(); yr != n {
		return nil, nil, nil, nil, cartErrors.NewDimensionError("TrainTestSplit", n, yr, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, cartErrors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest < 1 || nTest >= n {
		return nil, nil, nil, nil, cartErrors.NewValueError("TrainTestSplit",
			fmt.Sprintf("with n_samples=%d and test_size=%v the train or test set would be empty", n, testSize))
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	XTest, yTest = takeRows(X, y, perm[:nTest])
	XTrain, yTrain = takeRows(X, y, perm[nTest:])
	return XTrain, XTest, yTrain, yTest, nil
}

func checkSplits(nSplits, n int) error {
	if nSplits < 2 {
		return cartErrors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	if nSplits > n {
		return cartErrors.NewValueError("Split",
			fmt.Sprintf("cannot have number of splits n_splits=%d greater than the number of samples: n_samples=%d", nSplits, n))
	}
	return nil
}

func foldSize(n, k, f int) int {
	size := n / k
	if f < n%k {
		size++
	}
	return size
}

// buildFolds turns a sample→fold assignment into folds with sorted index lists.
func buildFolds(testOf []int, k int) []Fold {
	folds := make([]Fold, k)
	for i, f := range testOf {
		for g := range folds {
			if g == f {
				folds[g].Test = append(folds[g].Test, i)
			} else {
				folds[g].Train = append(folds[g].Train, i)
			}
		}
	}
	return folds
}

// takeRows copies the given rows of X and y into new matrices.
func takeRows(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, p := X.Dims()
	Xs := mat.NewDense(len(indices), p, nil)
	ys := mat.NewDense(len(indices), 1, nil)
	for k, i := range indices {
		for j := 0; j < p; j++ {
			Xs.Set(k, j, X.At(i, j))
		}
		ys.Set(k, 0, y.At(i, 0))
	}
	return Xs, ys
}
