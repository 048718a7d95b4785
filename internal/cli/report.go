package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tillflow/tillflow/internal/pipeline"
	"github.com/tillflow/tillflow/internal/storage"
)

// RenderRunReport renders the operator summary of a pipeline run: the
// dedup correction, quantity consistency, warning counts, and the row
// count of every loaded table.
func RenderRunReport(report pipeline.RunReport, tableCounts map[string]int) string {
	var b strings.Builder

	line := func(label, value string) {
		b.WriteString(LabelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	line("Rows removed", fmt.Sprintf("%d (%.2f%% of input)",
		report.Dedup.RowsRemoved(), report.Dedup.RowsRemovedPct()))
	line("Revenue corrected", fmt.Sprintf("$%.2f (%.2f%% of original revenue)",
		report.Dedup.RevenueCorrection(), report.Dedup.RevenueCorrectionPct()))
	line("Quantity consistency", fmt.Sprintf("%d of %d non-zero lines (%.2f%%)",
		report.Financial.IntegerMultiples, report.Financial.NonZeroLines,
		report.Financial.ConsistencyPct()))

	if report.Resolve.Total() > 0 {
		line("Unresolved rows", FormatWarning(fmt.Sprintf("%d excluded (items %d, transactions %d)",
			report.Resolve.Total(), report.Resolve.UnresolvedItems, report.Resolve.UnresolvedTransactions)))
	} else {
		line("Unresolved rows", FormatSuccess("none"))
	}

	if report.ReferenceGaps > 0 {
		line("Reference gaps", FormatWarning(fmt.Sprintf("%d items without a category match", report.ReferenceGaps)))
	}

	for _, warning := range formatColumnWarnings(report.ParseWarnings) {
		line("Parse warnings", FormatWarning(warning))
	}
	for _, warning := range formatColumnWarnings(report.CoerceWarnings) {
		line("Coerce warnings", FormatWarning(warning))
	}

	b.WriteString("\n")
	for _, table := range storage.OutputTables {
		line(table, fmt.Sprintf("%d rows", tableCounts[table]))
	}

	return RenderBox("Pipeline run summary", strings.TrimRight(b.String(), "\n"))
}

// formatColumnWarnings flattens a per-column warning map into stable,
// sorted "column: n" lines.
func formatColumnWarnings(warnings map[string]int) []string {
	if len(warnings) == 0 {
		return nil
	}
	columns := make([]string, 0, len(warnings))
	for col := range warnings {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	out := make([]string, 0, len(columns))
	for _, col := range columns {
		out = append(out, fmt.Sprintf("%s: %d", col, warnings[col]))
	}
	return out
}
