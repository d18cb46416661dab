package tree

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ezoic/cart/pkg/errors"
)

// GraphvizOptions controls ExportGraphviz.
type GraphvizOptions struct {
	FeatureNames []string // defaults to the model's FeatureNames
	ClassNames   []string // adds a "class = " line when set
	Filled       bool     // color nodes by majority class and purity
	Precision    int      // decimals for thresholds and impurity, default 3
}

// ExportGraphviz renders the fitted tree as a Graphviz DOT document in the
// layout of scikit-learn's export_graphviz.
func ExportGraphviz(dt *DecisionTreeClassifier, opts GraphvizOptions) (string, error) {
	if err := dt.state.RequireFitted(modelName, "ExportGraphviz"); err != nil {
		return "", err
	}
	if opts.FeatureNames == nil {
		opts.FeatureNames = dt.FeatureNames()
	}
	if len(opts.FeatureNames) != dt.NFeatures() {
		return "", errors.NewDimensionError("ExportGraphviz", dt.NFeatures(), len(opts.FeatureNames), 1)
	}
	if opts.ClassNames != nil && len(opts.ClassNames) != len(dt.classes) {
		return "", errors.NewValidationError("class_names",
			fmt.Sprintf("expected %d names", len(dt.classes)), len(opts.ClassNames))
	}
	if opts.Precision <= 0 {
		opts.Precision = 3
	}

	w := &dotWriter{dt: dt, opts: opts, colors: colorBrew(len(dt.classes))}
	w.head()
	w.recurse(dt.root, -1)
	w.sb.WriteString("}")
	return w.sb.String(), nil
}

type dotWriter struct {
	dt     *DecisionTreeClassifier
	opts   GraphvizOptions
	colors [][3]int
	sb     strings.Builder
}

func (w *dotWriter) head() {
	w.sb.WriteString("digraph Tree {\n")
	w.sb.WriteString("node [shape=box")
	if w.opts.Filled {
		w.sb.WriteString(`, style="filled", color="black"`)
	}
	w.sb.WriteString(`, fontname="helvetica"] ;` + "\n")
	w.sb.WriteString(`edge [fontname="helvetica"] ;` + "\n")
}

func (w *dotWriter) recurse(node *TreeNode, parent int) {
	fmt.Fprintf(&w.sb, "%d [label=%s", node.ID, w.label(node))
	if w.opts.Filled {
		fmt.Fprintf(&w.sb, `, fillcolor="%s"`, w.fillColor(node))
	}
	w.sb.WriteString("] ;\n")

	if parent >= 0 {
		fmt.Fprintf(&w.sb, "%d -> %d", parent, node.ID)
		if parent == 0 {
			if node.ID == 1 {
				w.sb.WriteString(` [labeldistance=2.5, labelangle=45, headlabel="True"]`)
			} else {
				w.sb.WriteString(` [labeldistance=2.5, labelangle=-45, headlabel="False"]`)
			}
		}
		w.sb.WriteString(" ;\n")
	}

	if !node.IsLeaf {
		w.recurse(node.Left, node.ID)
		w.recurse(node.Right, node.ID)
	}
}

func (w *dotWriter) label(node *TreeNode) string {
	const newline = `\n`
	var parts []string
	if !node.IsLeaf {
		parts = append(parts, fmt.Sprintf("%s <= %s",
			w.opts.FeatureNames[node.Feature], pyRound(node.Threshold, w.opts.Precision)))
	}
	parts = append(parts,
		fmt.Sprintf("%s = %s", w.dt.criterion, pyRound(node.Impurity, w.opts.Precision)),
		fmt.Sprintf("samples = %d", node.NSamples),
		"value = "+w.valueText(node.ClassCounts),
	)
	if w.opts.ClassNames != nil {
		parts = append(parts, "class = "+w.opts.ClassNames[node.PredictClass])
	}
	return `"` + strings.Join(parts, newline) + `"`
}

func (w *dotWriter) valueText(counts []float64) string {
	integral := true
	for _, c := range counts {
		if c != math.Trunc(c) {
			integral = false
			break
		}
	}
	values := make([]string, len(counts))
	for i, c := range counts {
		if integral {
			values[i] = strconv.FormatFloat(c, 'f', 0, 64)
		} else {
			values[i] = pyRound(c, w.opts.Precision)
		}
	}
	return "[" + strings.Join(values, ", ") + "]"
}

// fillColor blends the majority class color with white by node purity
func (w *dotWriter) fillColor(node *TreeNode) string {
	total := 0.0
	for _, c := range node.ClassCounts {
		total += c
	}
	proportions := make([]float64, len(node.ClassCounts))
	for i, c := range node.ClassCounts {
		if total > 0 {
			proportions[i] = c / total
		}
	}

	color := w.colors[argmax(proportions)]
	alpha := 0.0
	if len(proportions) > 1 {
		sorted := slices.Clone(proportions)
		slices.Sort(sorted)
		slices.Reverse(sorted)
		if sorted[1] < 1 {
			alpha = (sorted[0] - sorted[1]) / (1 - sorted[1])
		}
	}

	var rgb [3]int
	for i, c := range color {
		rgb[i] = int(math.RoundToEven(alpha*float64(c) + (1-alpha)*255))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// colorBrew returns n evenly spaced hues, the palette scikit-learn uses
func colorBrew(n int) [][3]int {
	s, v := 0.75, 0.9
	c := s * v
	m := v - c
	colors := make([][3]int, 0, n)
	step := 360.0 / float64(max(n, 1))
	for h := 25.0; h < 385 && len(colors) < n; h += step {
		hue := math.Trunc(h)
		hBar := hue / 60.0
		x := c * (1 - math.Abs(math.Mod(hBar, 2)-1))
		table := [7][3]float64{
			{c, x, 0}, {x, c, 0}, {0, c, x}, {0, x, c}, {x, 0, c}, {c, 0, x}, {c, x, 0},
		}
		rgb := table[int(hBar)]
		colors = append(colors, [3]int{
			int(255 * (rgb[0] + m)),
			int(255 * (rgb[1] + m)),
			int(255 * (rgb[2] + m)),
		})
	}
	return colors
}

// pyRound formats x rounded to the given decimals the way Python prints
// round(x, decimals): shortest form, always with a fractional part.
func pyRound(x float64, decimals int) string {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', decimals, 64), 64)
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// RenderGraph renders a DOT document to path. format is a Graphviz output
// format such as "png" or "svg".
func RenderGraph(dot string, format string, path string) (err error) {
	defer errors.Recover(&err, "RenderGraph")

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return errors.Wrap(err, "failed to parse DOT")
	}
	g := graphviz.New()
	defer func() {
		_ = graph.Close()
		_ = g.Close()
	}()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create output directory")
		}
	}
	if err := g.RenderFilename(graph, graphviz.Format(format), path); err != nil {
		return errors.Wrapf(err, "failed to render %s", path)
	}
	return nil
}
