package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ezoic/cart/pkg/errors"
)

// TextOptions controls ExportText. Zero values select the defaults.
type TextOptions struct {
	FeatureNames []string // defaults to the model's FeatureNames
	ClassNames   []string // defaults to the class labels
	MaxDepth     int      // deeper branches are truncated, default 10
	Spacing      int      // default 3
	Decimals     *int     // threshold decimals, nil selects 2
	ShowWeights  bool     // print per-class sample counts at leaves
}

// ExportText renders the fitted tree as indented if/else rules in the layout
// of scikit-learn's export_text:
//
//	|--- Glucose <= 127.50
//	|   |--- class: 0
//	|--- Glucose >  127.50
//	|   |--- class: 1
func ExportText(dt *DecisionTreeClassifier, opts TextOptions) (string, error) {
	if err := dt.state.RequireFitted(modelName, "ExportText"); err != nil {
		return "", err
	}
	if opts.FeatureNames == nil {
		opts.FeatureNames = dt.FeatureNames()
	}
	if len(opts.FeatureNames) != dt.NFeatures() {
		return "", errors.NewDimensionError("ExportText", dt.NFeatures(), len(opts.FeatureNames), 1)
	}
	if opts.ClassNames != nil && len(opts.ClassNames) != len(dt.classes) {
		return "", errors.NewValidationError("class_names",
			fmt.Sprintf("expected %d names", len(dt.classes)), len(opts.ClassNames))
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 10
	}
	if opts.Spacing <= 0 {
		opts.Spacing = 3
	}
	decimals := 2
	if opts.Decimals != nil {
		if *opts.Decimals < 0 {
			return "", errors.NewValidationError("decimals", "must be non-negative", *opts.Decimals)
		}
		decimals = *opts.Decimals
	}

	w := &textWriter{dt: dt, opts: opts, decimals: decimals}
	w.recurse(dt.root, 1)
	return w.sb.String(), nil
}

type textWriter struct {
	dt       *DecisionTreeClassifier
	opts     TextOptions
	decimals int
	sb       strings.Builder
}

func (w *textWriter) className(node *TreeNode) string {
	if w.opts.ClassNames != nil {
		return w.opts.ClassNames[node.PredictClass]
	}
	return strconv.FormatFloat(w.dt.classes[node.PredictClass], 'f', -1, 64)
}

func (w *textWriter) addLeaf(node *TreeNode, indent string) {
	val := ""
	if w.opts.ShowWeights {
		weights := make([]string, len(node.ClassCounts))
		for i, c := range node.ClassCounts {
			weights[i] = strconv.FormatFloat(c, 'f', w.decimals, 64)
		}
		val = " weights: [" + strings.Join(weights, ", ") + "]"
	}
	val += " class: " + w.className(node)
	w.sb.WriteString(indent + val + "\n")
}

func (w *textWriter) recurse(node *TreeNode, depth int) {
	indent := strings.Repeat("|"+strings.Repeat(" ", w.opts.Spacing), depth)
	indent = indent[:len(indent)-w.opts.Spacing] + strings.Repeat("-", w.opts.Spacing)

	if depth > w.opts.MaxDepth+1 {
		subtree := subtreeDepth(node)
		if subtree == 1 {
			w.addLeaf(node, indent)
		} else {
			fmt.Fprintf(&w.sb, "%s truncated branch of depth %d\n", indent, subtree)
		}
		return
	}

	if node.IsLeaf {
		w.addLeaf(node, indent)
		return
	}

	name := w.opts.FeatureNames[node.Feature]
	threshold := strconv.FormatFloat(node.Threshold, 'f', w.decimals, 64)
	fmt.Fprintf(&w.sb, "%s %s <= %s\n", indent, name, threshold)
	w.recurse(node.Left, depth+1)
	fmt.Fprintf(&w.sb, "%s %s >  %s\n", indent, name, threshold)
	w.recurse(node.Right, depth+1)
}

// subtreeDepth counts levels below node, a leaf counting as 1
func subtreeDepth(node *TreeNode) int {
	if node.IsLeaf {
		return 1
	}
	return 1 + max(subtreeDepth(node.Left), subtreeDepth(node.Right))
}
