package tree

import (
	"math"
	"slices"

	"github.com/ezoic/cart/core/model"
	"github.com/ezoic/cart/pkg/errors"
)

// FromSKLearn builds a fitted classifier from the tree_ arrays of a Python
// scikit-learn DecisionTreeClassifier.
//
// 使用例:
//
//	m, _ := model.LoadSKLearnModelFromFile("cart_sklearn.json")
//	params, _ := model.LoadDecisionTreeParams(m)
//	clf, err := tree.FromSKLearn(params)
func FromSKLearn(p *model.SKLearnTreeParams) (*DecisionTreeClassifier, error) {
	if p == nil {
		return nil, errors.NewValueError("FromSKLearn", "params must not be nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	criterion := p.Criterion
	if criterion == "" {
		criterion = "gini"
	}
	dt := NewDecisionTreeClassifier(
		WithCriterion(criterion),
		WithMaxDepth(p.MaxDepth),
		WithFeatureNames(p.FeatureNames),
	)
	if err := dt.validateParams(); err != nil {
		return nil, err
	}

	nextID := 0
	var build func(i, depth int) *TreeNode
	build = func(i, depth int) *TreeNode {
		counts := slices.Clone(p.Value[i])
		sum := 0.0
		for _, c := range counts {
			sum += c
		}
		n := int(math.Round(sum))
		if len(p.NNodeSamples) == len(p.ChildrenLeft) {
			n = p.NNodeSamples[i]
			// scikit-learn >= 1.4 stores class fractions
			if math.Abs(sum-1) < 1e-9 && n > 1 {
				for j := range counts {
					counts[j] *= float64(n)
				}
			}
		}
		imp := impurity(criterion, counts, float64(n))
		if len(p.Impurity) == len(p.ChildrenLeft) {
			imp = p.Impurity[i]
		}

		node := &TreeNode{
			ID:           nextID,
			ClassCounts:  counts,
			PredictClass: argmax(counts),
			Impurity:     imp,
			NSamples:     n,
			Depth:        depth,
		}
		nextID++

		if p.ChildrenLeft[i] == model.TreeLeaf {
			node.IsLeaf = true
			return node
		}
		node.Feature = p.Feature[i]
		node.Threshold = p.Threshold[i]
		node.Left = build(p.ChildrenLeft[i], depth+1)
		node.Right = build(p.ChildrenRight[i], depth+1)
		return node
	}

	dt.root = build(0, 0)
	dt.nodeCount = nextID
	dt.classes = slices.Clone(p.Classes)

	if len(p.FeatureImportances) == p.NFeatures {
		dt.featureImportances = slices.Clone(p.FeatureImportances)
	} else {
		dt.featureImportances = make([]float64, p.NFeatures)
		dt.Walk(func(node *TreeNode) {
			if node.IsLeaf {
				return
			}
			dt.featureImportances[node.Feature] += float64(node.NSamples)*node.Impurity -
				float64(node.Left.NSamples)*node.Left.Impurity -
				float64(node.Right.NSamples)*node.Right.Impurity
		})
		normalize(dt.featureImportances)
	}

	dt.state.SetDimensions(p.NFeatures, dt.root.NSamples)
	dt.state.SetFitted()
	return dt, nil
}

// ToSKLearn exports the fitted tree as scikit-learn style parallel arrays.
func (dt *DecisionTreeClassifier) ToSKLearn() (*model.SKLearnTreeParams, error) {
	if err := dt.state.RequireFitted(modelName, "ToSKLearn"); err != nil {
		return nil, err
	}

	n := dt.nodeCount
	p := &model.SKLearnTreeParams{
		NFeatures:          dt.NFeatures(),
		NClasses:           len(dt.classes),
		Classes:            slices.Clone(dt.classes),
		FeatureNames:       slices.Clone(dt.featureNames),
		Criterion:          dt.criterion,
		MaxDepth:           dt.maxDepth,
		ChildrenLeft:       make([]int, n),
		ChildrenRight:      make([]int, n),
		Feature:            make([]int, n),
		Threshold:          make([]float64, n),
		Value:              make([][]float64, n),
		Impurity:           make([]float64, n),
		NNodeSamples:       make([]int, n),
		FeatureImportances: slices.Clone(dt.featureImportances),
	}

	dt.Walk(func(node *TreeNode) {
		i := node.ID
		p.Value[i] = slices.Clone(node.ClassCounts)
		p.Impurity[i] = node.Impurity
		p.NNodeSamples[i] = node.NSamples
		if node.IsLeaf {
			p.ChildrenLeft[i] = model.TreeLeaf
			p.ChildrenRight[i] = model.TreeLeaf
			p.Feature[i] = -2
			p.Threshold[i] = -2
			return
		}
		p.ChildrenLeft[i] = node.Left.ID
		p.ChildrenRight[i] = node.Right.ID
		p.Feature[i] = node.Feature
		p.Threshold[i] = node.Threshold
	})
	return p, nil
}
