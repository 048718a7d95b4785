package pipeline

import (
	"math"

	"github.com/tillflow/tillflow/internal/model"
)

// EnforceReport counts the per-column coercion fixes applied while
// finalizing the output tables.
type EnforceReport struct {
	ColumnWarnings map[string]int
}

func (r *EnforceReport) warn(column string) {
	if r.ColumnWarnings == nil {
		r.ColumnWarnings = make(map[string]int)
	}
	r.ColumnWarnings[column]++
}

// Enforcer finalizes the four output tables: monetary columns are
// coerced to fixed two-decimal precision, non-finite values fall back
// to zero with a counted per-column warning, and quantity is clamped
// to its declared lower bound. Column selection and the cross-table
// renames (item_cost_center, transaction_cost_center, has_beverage)
// are fixed by the struct-to-column mapping in the storage layer.
type Enforcer struct{}

// NewEnforcer creates an Enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{}
}

// Enforce returns a finalized copy of the dataset plus the coercion
// report. The input dataset is not mutated.
func (e *Enforcer) Enforce(ds model.Dataset) (model.Dataset, EnforceReport) {
	var report EnforceReport

	out := model.Dataset{
		Items:        make([]model.Item, len(ds.Items)),
		Categories:   make([]model.Category, len(ds.Categories)),
		Transactions: make([]model.Transaction, len(ds.Transactions)),
		LineItems:    make([]model.LineItem, len(ds.LineItems)),
	}

	for i, item := range ds.Items {
		item.Price = e.money(item.Price, "price", &report)
		item.Margin = e.money(item.Margin, "margin", &report)
		item.EstCost = e.money(item.EstCost, "est_cost", &report)
		out.Items[i] = item
	}

	for i, cat := range ds.Categories {
		cat.Margin = e.money(cat.Margin, "margin", &report)
		out.Categories[i] = cat
	}

	for i, txn := range ds.Transactions {
		txn.TotalAmount = e.money(txn.TotalAmount, "total_amount", &report)
		out.Transactions[i] = txn
	}

	for i, line := range ds.LineItems {
		line.GrossRevenue = e.money(line.GrossRevenue, "gross_revenue", &report)
		line.Margin = e.money(line.Margin, "margin", &report)
		line.Price = e.money(line.Price, "price", &report)
		line.EstCost = e.money(line.EstCost, "est_cost", &report)
		line.EstProfit = e.money(line.EstProfit, "est_profit", &report)
		if line.Quantity < 0 {
			line.Quantity = 0
			report.warn("quantity")
		}
		out.LineItems[i] = line
	}

	return out, report
}

// money coerces a monetary value to two decimal places. NaN and
// infinities become 0 and count against the column.
func (e *Enforcer) money(v float64, column string, report *EnforceReport) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		report.warn(column)
		return 0
	}
	return math.Round(v*100) / 100
}
