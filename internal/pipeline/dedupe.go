package pipeline

import (
	"log/slog"
	"strings"

	"github.com/tillflow/tillflow/internal/model"
)

// dedupKey identifies a single physical sale. POS exports duplicate the
// same sale under different day_part and category artifacts; category
// is accent-folded and lower-cased for identity only, the retained row
// keeps its original text.
type dedupKey struct {
	ItemName      string
	Date          string
	SaleTimeExact string
	CostCenter    string
	CategoryFold  string
	CheckID       int64
	HasBeverage   bool
}

// DedupReport describes the correction magnitude of one dedup pass.
type DedupReport struct {
	RowsBefore    int
	RowsAfter     int
	RevenueBefore float64
	RevenueAfter  float64
}

// RowsRemoved returns the number of collapsed rows.
func (r DedupReport) RowsRemoved() int {
	return r.RowsBefore - r.RowsAfter
}

// RowsRemovedPct returns removed rows as a percentage of the input.
func (r DedupReport) RowsRemovedPct() float64 {
	if r.RowsBefore == 0 {
		return 0
	}
	return 100 * float64(r.RowsRemoved()) / float64(r.RowsBefore)
}

// RevenueCorrection returns the summed revenue removed by dedup.
func (r DedupReport) RevenueCorrection() float64 {
	return r.RevenueBefore - r.RevenueAfter
}

// RevenueCorrectionPct returns the correction as a percentage of the
// pre-dedup revenue total.
func (r DedupReport) RevenueCorrectionPct() float64 {
	if r.RevenueBefore == 0 {
		return 0
	}
	return 100 * r.RevenueCorrection() / r.RevenueBefore
}

// Deduplicator collapses rows that record the same physical sale.
type Deduplicator struct{}

// NewDeduplicator creates a Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate collapses each identity group into one row: maximum
// gross revenue (partial scans report lower amounts), modal category
// and day_part with first-encountered tie-breaks, first group. Output
// order follows the first appearance of each identity key, so the
// result is deterministic for a fixed input order.
func (d *Deduplicator) Deduplicate(rows []model.SaleRow) ([]model.SaleRow, DedupReport) {
	report := DedupReport{RowsBefore: len(rows)}

	groups := make(map[dedupKey][]model.SaleRow, len(rows))
	order := make([]dedupKey, 0, len(rows))
	for _, row := range rows {
		report.RevenueBefore += row.GrossRevenue

		key := dedupKey{
			CheckID:       row.CheckID,
			ItemName:      row.ItemName,
			Date:          row.Date,
			SaleTimeExact: row.SaleTimeExact,
			HasBeverage:   row.HasBeverage,
			CostCenter:    row.CostCenter,
			CategoryFold:  strings.ToLower(FoldAccents(row.Category)),
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	deduped := make([]model.SaleRow, 0, len(order))
	for _, key := range order {
		group := groups[key]
		deduped = append(deduped, collapse(group))
	}

	report.RowsAfter = len(deduped)
	for _, row := range deduped {
		report.RevenueAfter += row.GrossRevenue
	}

	slog.Debug("deduplicated sale rows",
		"rows_before", report.RowsBefore,
		"rows_after", report.RowsAfter,
		"rows_removed", report.RowsRemoved())

	return deduped, report
}

// collapse merges one identity group into its retained row.
func collapse(group []model.SaleRow) model.SaleRow {
	row := group[0]

	categories := make([]string, len(group))
	dayParts := make([]string, len(group))
	for i, r := range group {
		categories[i] = r.Category
		dayParts[i] = r.DayPart
		if r.GrossRevenue > row.GrossRevenue {
			row.GrossRevenue = r.GrossRevenue
		}
	}

	row.Category = mostFrequent(categories)
	row.DayPart = mostFrequent(dayParts)
	// Group stays first-encountered; the category split tracks the
	// retained category text.
	row.CategoryMain, row.SubCategory = SplitCategory(row.Category)

	return row
}
