package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/tillflow/tillflow/internal/common"
	"github.com/tillflow/tillflow/internal/model"
)

// RunReport collects every diagnostic a run produces. It is always
// surfaced to the operator, whatever the outcome, so drift between
// runs stays visible.
type RunReport struct {
	ParseWarnings    map[string]int
	CoerceWarnings   map[string]int
	Dedup            DedupReport
	Resolve          ResolveReport
	Financial        FinancialReport
	ReferenceGaps    int
	ItemCount        int
	CategoryCount    int
	TransactionCount int
	LineItemCount    int
}

// Pipeline wires the six transformation stages into one batch run.
// Every stage is a pure function of its input tables; a run either
// produces the full dataset or fails before anything reaches the sink.
type Pipeline struct {
	normalizer *Normalizer
	dedup      *Deduplicator
	dims       *DimensionBuilder
	facts      *FactBuilder
	financial  *FinancialDeriver
	enforcer   *Enforcer
}

// New creates a Pipeline with the standard stages.
func New() *Pipeline {
	return &Pipeline{
		normalizer: NewNormalizer(),
		dedup:      NewDeduplicator(),
		dims:       NewDimensionBuilder(),
		facts:      NewFactBuilder(),
		financial:  NewFinancialDeriver(),
		enforcer:   NewEnforcer(),
	}
}

// Run transforms raw POS rows and the category reference into the
// star-schema dataset. An empty input table is fatal; per-field parse
// failures, reference gaps and unresolved rows are not, they degrade
// to defaults or exclusions and show up in the report.
func (p *Pipeline) Run(raw []model.RawSaleRow, refs []model.CategoryReference) (model.Dataset, RunReport, error) {
	var report RunReport

	if len(raw) == 0 {
		return model.Dataset{}, report, fmt.Errorf("%w: no raw sale rows", common.ErrEmptyInput)
	}

	rows, normReport := p.normalizer.Normalize(raw)
	report.ParseWarnings = normReport.ColumnWarnings
	if normReport.TotalWarnings() > 0 {
		slog.Warn("parse warnings during normalization", "columns", normReport.ColumnWarnings)
	}

	deduped, dedupReport := p.dedup.Deduplicate(rows)
	report.Dedup = dedupReport

	categories := p.dims.BuildCategories(refs)
	items, gaps := p.dims.BuildItems(deduped, categories)
	report.ReferenceGaps = gaps

	transactions := p.facts.BuildTransactions(deduped)
	lineItems, resolveReport := p.facts.BuildLineItems(deduped, items, transactions)
	report.Resolve = resolveReport

	lineItems, finReport := p.financial.Derive(lineItems, items)
	report.Financial = finReport

	ds, enforceReport := p.enforcer.Enforce(model.Dataset{
		Items:        items,
		Categories:   categories,
		Transactions: transactions,
		LineItems:    lineItems,
	})
	report.CoerceWarnings = enforceReport.ColumnWarnings

	report.ItemCount = len(ds.Items)
	report.CategoryCount = len(ds.Categories)
	report.TransactionCount = len(ds.Transactions)
	report.LineItemCount = len(ds.LineItems)

	slog.Info("pipeline transform complete",
		"items", report.ItemCount,
		"categories", report.CategoryCount,
		"transactions", report.TransactionCount,
		"line_items", report.LineItemCount,
		"rows_removed", dedupReport.RowsRemoved(),
		"unresolved", resolveReport.Total())

	return ds, report, nil
}
