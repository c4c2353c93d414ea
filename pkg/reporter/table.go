package reporter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
)

func newTableWriter(report *Report) table.Writer {
	t := table.NewWriter()

	headers := report.Headers()
	t.AppendHeader(toRow(headers))
	for _, row := range report.Rows {
		t.AppendRow(toRow(row.Values(report.Breakdown)))
	}

	footer := make([]string, len(headers))
	footer[0] = "Total"
	footer[len(headers)-2] = FormatMinutes(report.TotalMinutes)
	footer[len(headers)-1] = FormatCost(report.TotalCost)
	t.AppendFooter(toRow(footer))

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Minutes", Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Name: "Cost", Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return t
}

func toRow(values []string) table.Row {
	return lo.Map(values, func(v string, _ int) interface{} { return v })
}

// GenerateTable writes the report as a console table
func GenerateTable(report *Report, w io.Writer) error {
	t := newTableWriter(report)
	t.SetStyle(table.StyleLight)

	fmt.Fprintln(w, "Summary of GitHub Actions usage:")
	fmt.Fprintf(w, "Note: %s\n\n", selfHostedNote)
	fmt.Fprintln(w, t.Render())
	writeFailures(report, w, "")
	_, err := fmt.Fprintf(w, "\nRun %s completed in %.1f seconds. API calls made: %d\n",
		report.RunID, report.Elapsed.Seconds(), report.APICalls)
	return err
}

// GenerateMarkdown writes the report as a markdown document
func GenerateMarkdown(report *Report, w io.Writer) error {
	t := newTableWriter(report)

	fmt.Fprintln(w, "# GitHub Actions Usage")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "_%s_\n\n", selfHostedNote)
	fmt.Fprintln(w, t.RenderMarkdown())
	writeFailures(report, w, "## ")
	_, err := fmt.Fprintf(w, "\nRun `%s`: %d API calls in %.1f seconds, pricing `%s`.\n",
		report.RunID, report.APICalls, report.Elapsed.Seconds(), report.Pricing)
	return err
}

func writeFailures(report *Report, w io.Writer, heading string) {
	if len(report.Failed) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%sFailed repositories (%d)\n", heading, len(report.Failed))
	if heading != "" {
		fmt.Fprintln(w)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(w, "- %s: %s\n", f.Repository, f.Error)
	}
}
