// Package codegen compiles a fitted decision tree into a nested conditional
// expression and renders it as Go, Python, SQL or an Excel formula.
//
// A Program is a snapshot: it does not follow later changes of the tree it was
// compiled from. Regenerate it whenever the model is refitted.
package codegen

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/ezoic/cart/pkg/errors"
	"github.com/ezoic/cart/sklearn/tree"
)

// Expr is a node of the compiled expression: either *Cond or *Leaf.
type Expr interface {
	isExpr()
}

// Cond evaluates Then when x[Feature] <= Threshold and Else otherwise.
type Cond struct {
	Feature   int
	Threshold float64
	Then      Expr
	Else      Expr
}

// Leaf yields a class label.
type Leaf struct {
	Class float64
}

func (*Cond) isExpr() {}
func (*Leaf) isExpr() {}

// Program is a compiled tree together with its feature names.
type Program struct {
	Root         Expr
	FeatureNames []string
}

// Compile freezes the decision logic of a fitted tree.
func Compile(dt *tree.DecisionTreeClassifier) (*Program, error) {
	if !dt.IsFitted() {
		return nil, cartErrors.NewNotFittedError("DecisionTreeClassifier", "Compile")
	}
	classes := dt.Classes()

	var build func(n *tree.TreeNode) Expr
	build = func(n *tree.TreeNode) Expr {
		if n.IsLeaf {
			return &Leaf{Class: classes[n.PredictClass]}
		}
		return &Cond{
			Feature:   n.Feature,
			Threshold: n.Threshold,
			Then:      build(n.Left),
			Else:      build(n.Right),
		}
	}
	return &Program{Root: build(dt.Root()), FeatureNames: dt.FeatureNames()}, nil
}

// Predict evaluates the program on one feature vector.
func (p *Program) Predict(x []float64) float64 {
	e := p.Root
	for {
		switch n := e.(type) {
		case *Leaf:
			return n.Class
		case *Cond:
			if x[n.Feature] <= n.Threshold {
				e = n.Then
			} else {
				e = n.Else
			}
		}
	}
}

// Verify checks that the program and dt predict the same class on every row of X.
func (p *Program) Verify(dt *tree.DecisionTreeClassifier, X mat.Matrix) error {
	want, err := dt.Predict(X)
	if err != nil {
		return err
	}
	n, _ := X.Dims()
	for i := 0; i < n; i++ {
		got := p.Predict(mat.Row(nil, i, X))
		if got != want.At(i, 0) {
			return cartErrors.NewPredictionMismatchError("rules", i, want.At(i, 0), got)
		}
	}
	return nil
}

// Depth returns the number of conditions on the longest path.
func (p *Program) Depth() int {
	var depth func(e Expr) int
	depth = func(e Expr) int {
		c, ok := e.(*Cond)
		if !ok {
			return 0
		}
		return 1 + max(depth(c.Then), depth(c.Else))
	}
	return depth(p.Root)
}

// number renders v in the shortest decimal form that parses back to exactly v,
// never in exponent notation.
func number(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func label(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *Program) featureName(j int) string {
	if j < len(p.FeatureNames) {
		return p.FeatureNames[j]
	}
	return fmt.Sprintf("feature_%d", j)
}
