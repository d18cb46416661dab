package workflow

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// printer writes the human-readable console report. Colors follow
// color.NoColor, so redirected output stays plain.
type printer struct {
	w       io.Writer
	heading func(a ...any) string
	key     func(a ...any) string
	good    func(a ...any) string
	bad     func(a ...any) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold).SprintFunc(),
		key:     color.New(color.FgYellow).SprintFunc(),
		good:    color.New(color.FgGreen).SprintFunc(),
		bad:     color.New(color.FgRed).SprintFunc(),
	}
}

func (p *printer) section(n int, title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.heading(fmt.Sprintf("## %d. %s", n, title)))
}

func (p *printer) subsection(title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.key(title))
}

func (p *printer) kv(key string, value any) {
	fmt.Fprintf(p.w, "%s: %v\n", p.key(key), value)
}

func (p *printer) score(key string, v float64) {
	fmt.Fprintf(p.w, "%s: %.4f\n", p.key(key), v)
}

func (p *printer) block(text string) {
	fmt.Fprint(p.w, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(p.w)
	}
}

func (p *printer) check(name string, ok bool) {
	mark := p.good("✓")
	if !ok {
		mark = p.bad("✗")
	}
	fmt.Fprintf(p.w, "%s %s\n", mark, name)
}

func (p *printer) artifact(kind, path string) {
	fmt.Fprintf(p.w, "%s %s written to %s\n", p.good("✓"), kind, path)
}

// formatParams renders params as key=value pairs in key order.
func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v := params[k]
		if v == nil {
			v = "None"
		}
		parts[i] = fmt.Sprintf("%s=%v", k, v)
	}
	return strings.Join(parts, " ")
}

func formatRow(row []float64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
