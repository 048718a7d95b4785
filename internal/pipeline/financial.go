package pipeline

import (
	"math"

	"github.com/tillflow/tillflow/internal/model"
)

// FinancialReport is the self-consistency diagnostic for quantity
// inference: of all line items with non-zero revenue, how many have a
// revenue that is an exact integer multiple of the unit price.
type FinancialReport struct {
	NonZeroLines     int
	IntegerMultiples int
}

// ConsistencyPct returns the integer-multiple share as a percentage.
func (r FinancialReport) ConsistencyPct() float64 {
	if r.NonZeroLines == 0 {
		return 0
	}
	return 100 * float64(r.IntegerMultiples) / float64(r.NonZeroLines)
}

// FinancialDeriver fills the unit-economics columns of the line items.
type FinancialDeriver struct{}

// NewFinancialDeriver creates a FinancialDeriver.
func NewFinancialDeriver() *FinancialDeriver {
	return &FinancialDeriver{}
}

// Derive joins each line item to its resolved item's margin and price,
// then computes est_cost, est_profit and quantity. Quantity inference
// rounds revenue over price, a heuristic that can misestimate when
// distinct items share a price; the consistency report is the drift
// signal for that assumption. A zero or unknown price yields quantity
// 1, and quantity never goes negative. Returns a new slice; the input
// is not mutated.
func (d *FinancialDeriver) Derive(lineItems []model.LineItem, items []model.Item) ([]model.LineItem, FinancialReport) {
	byID := make(map[int64]model.Item, len(items))
	for _, item := range items {
		byID[item.ItemID] = item
	}

	derived := make([]model.LineItem, len(lineItems))
	var report FinancialReport
	for i, line := range lineItems {
		if item, ok := byID[line.ItemID]; ok {
			line.Margin = item.Margin
			line.Price = item.Price
		}

		line.EstCost = line.GrossRevenue * (1 - line.Margin)
		line.EstProfit = line.GrossRevenue - line.EstCost

		if line.Price > 0 {
			line.Quantity = int64(math.Round(line.GrossRevenue / line.Price))
			if line.Quantity < 0 {
				line.Quantity = 0
			}
		} else {
			line.Quantity = 1
		}

		derived[i] = line
	}

	// The consistency check runs against the derived quantities, not
	// the raw ratios.
	for _, line := range derived {
		if line.GrossRevenue == 0 {
			continue
		}
		report.NonZeroLines++
		if line.Price > 0 && math.Abs(line.GrossRevenue-float64(line.Quantity)*line.Price) < 1e-6 {
			report.IntegerMultiples++
		}
	}

	return derived, report
}
