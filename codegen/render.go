package codegen

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Go renders the program as a Go function taking the feature vector in column order.
func (p *Program) Go(funcName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(x []float64) float64 {\n", funcName)
	p.goExpr(&b, p.Root, 1)
	b.WriteString("}\n")
	return b.String()
}

func (p *Program) goExpr(b *strings.Builder, e Expr, depth int) {
	indent := strings.Repeat("\t", depth)
	switch n := e.(type) {
	case *Leaf:
		fmt.Fprintf(b, "%sreturn %s\n", indent, label(n.Class))
	case *Cond:
		fmt.Fprintf(b, "%sif x[%d] <= %s { // %s\n", indent, n.Feature, number(n.Threshold), p.featureName(n.Feature))
		p.goExpr(b, n.Then, depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
		p.goExpr(b, n.Else, depth)
	}
}

// Python renders the program as a single nested conditional expression over the
// feature vector x, indexed in column order.
func (p *Program) Python() string {
	var expr func(e Expr) string
	expr = func(e Expr) string {
		switch n := e.(type) {
		case *Cond:
			return fmt.Sprintf("(%s if x[%d] <= %s else %s)",
				expr(n.Then), n.Feature, number(n.Threshold), expr(n.Else))
		case *Leaf:
			return label(n.Class)
		}
		return ""
	}
	return expr(p.Root)
}

// SQL renders the program as a SELECT over table with one CASE expression.
func (p *Program) SQL(table string) string {
	var b strings.Builder
	b.WriteString("SELECT\n")
	p.sqlExpr(&b, p.Root, 1)
	fmt.Fprintf(&b, " AS y\nFROM %s", table)
	return b.String()
}

func (p *Program) sqlExpr(b *strings.Builder, e Expr, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := e.(type) {
	case *Leaf:
		fmt.Fprintf(b, "%s%s", indent, label(n.Class))
	case *Cond:
		fmt.Fprintf(b, "%sCASE WHEN %s <= %s THEN\n", indent, quoteIdent(p.featureName(n.Feature)), number(n.Threshold))
		p.sqlExpr(b, n.Then, depth+1)
		fmt.Fprintf(b, "\n%sELSE\n", indent)
		p.sqlExpr(b, n.Else, depth+1)
		fmt.Fprintf(b, "\n%sEND", indent)
	}
}

// Excel renders the program as a spreadsheet formula (without the leading "=")
// reading feature j from column j+1 of the given 1-based row.
func (p *Program) Excel(row int) (string, error) {
	var expr func(e Expr) (string, error)
	expr = func(e Expr) (string, error) {
		switch n := e.(type) {
		case *Cond:
			col, err := excelize.ColumnNumberToName(n.Feature + 1)
			if err != nil {
				return "", err
			}
			then, err := expr(n.Then)
			if err != nil {
				return "", err
			}
			els, err := expr(n.Else)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("IF(%s%d<=%s,%s,%s)", col, row, number(n.Threshold), then, els), nil
		case *Leaf:
			return label(n.Class), nil
		}
		return "", nil
	}
	return expr(p.Root)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
