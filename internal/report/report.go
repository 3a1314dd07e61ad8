// Package report renders an analysis run as a markdown document and as
// HTML for the web surface.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goanova/domain/anova"
)

// Markdown renders the run as a markdown report with one table per
// analysis.
func Markdown(run *anova.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis run %s\n\n", run.ID)
	if run.Dataset != "" {
		fmt.Fprintf(&b, "Dataset: `%s`  \n", run.Dataset)
	}
	fmt.Fprintf(&b, "Grouping variable: `%s`  \n", run.GroupColumn)
	fmt.Fprintf(&b, "Computed: %s\n\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if len(run.Univariate) > 0 {
		b.WriteString("## One-way ANOVA\n\n")
		writeResultTable(&b, run.Univariate)
	}
	if len(run.Factorial) > 0 {
		b.WriteString("## Factorial ANOVA (projected factors)\n\n")
		writeResultTable(&b, run.Factorial)
	}
	if m := run.Multivariate; m != nil {
		b.WriteString("## MANOVA\n\n")
		fmt.Fprintf(&b, "Variables: %s  \n", strings.Join(m.Variables, ", "))
		fmt.Fprintf(&b, "Groups: %d, observations: %d\n\n", m.NGroups, m.TotalN)
		b.WriteString("| statistic | value |\n|---|---|\n")
		fmt.Fprintf(&b, "| wilks_lambda | %s |\n", formatValue(m.WilksLambda))
		fmt.Fprintf(&b, "| hotelling_lawley_trace | %s |\n", formatValue(m.HotellingLawleyTrace))
		fmt.Fprintf(&b, "| pillai_bartlett_trace | %s |\n", formatValue(m.PillaiBartlettTrace))
		b.WriteString("\nNo significance test is computed for the multivariate statistics.\n")
	}

	return b.String()
}

// HTML renders the markdown report to HTML.
func HTML(run *anova.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(run)), p, renderer)
}

func writeResultTable(b *strings.Builder, rows []anova.TestResult) {
	b.WriteString("| variable | p_value | f_statistic | mean_variance_between | mean_variance_within | df1 | df2 | n |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %d | %d | %d |\n",
			row.Variable,
			formatValue(row.PValue),
			formatValue(row.FStatistic),
			formatValue(row.MeanVarianceBetween),
			formatValue(row.MeanVarianceWithin),
			row.DFBetween, row.DFWithin, row.TotalN)
	}
	b.WriteString("\n")
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return fmt.Sprintf("%.6g", v)
	}
}
