package pipeline

import (
	"log/slog"
	"sort"

	"github.com/tillflow/tillflow/internal/model"
)

// ResolveReport counts line items whose foreign keys failed to resolve.
// Such rows are excluded from the final fact table, never written with
// a fabricated key.
type ResolveReport struct {
	UnresolvedItems        int
	UnresolvedTransactions int
}

// Total returns the number of excluded rows.
func (r ResolveReport) Total() int {
	return r.UnresolvedItems + r.UnresolvedTransactions
}

// FactBuilder derives the transactions and line_items fact tables.
type FactBuilder struct{}

// NewFactBuilder creates a FactBuilder.
func NewFactBuilder() *FactBuilder {
	return &FactBuilder{}
}

// BuildTransactions groups deduplicated rows by check_id: first
// timestamp in original order, summed revenue, counted items, first
// cost_center/day_part/beverage flag, modal group. Ids are 1-based in
// ascending check_id order.
func (b *FactBuilder) BuildTransactions(rows []model.SaleRow) []model.Transaction {
	grouped := make(map[int64][]model.SaleRow, len(rows))
	checkIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		if _, ok := grouped[row.CheckID]; !ok {
			checkIDs = append(checkIDs, row.CheckID)
		}
		grouped[row.CheckID] = append(grouped[row.CheckID], row)
	}

	sort.Slice(checkIDs, func(i, j int) bool { return checkIDs[i] < checkIDs[j] })

	transactions := make([]model.Transaction, 0, len(checkIDs))
	for i, checkID := range checkIDs {
		group := grouped[checkID]
		first := group[0]

		txn := model.Transaction{
			TransactionID: int64(i + 1),
			CheckID:       checkID,
			Timestamp:     first.Timestamp,
			CostCenter:    first.CostCenter,
			DayPart:       first.DayPart,
			HasBeverage:   first.HasBeverage,
			NumItems:      int64(len(group)),
		}

		groups := make([]string, len(group))
		for j, row := range group {
			txn.TotalAmount += row.GrossRevenue
			groups[j] = row.Group
		}
		txn.TopGroup = mostFrequent(groups)

		transactions = append(transactions, txn)
	}
	return transactions
}

// BuildLineItems emits one line item per deduplicated row, resolving
// item_id on the full item identity key and transaction_id on
// check_id. Rows that fail either join signal an upstream identity
// mismatch: they are counted and excluded. Ids are assigned
// sequentially over the retained rows in deduplicated order.
func (b *FactBuilder) BuildLineItems(rows []model.SaleRow, items []model.Item, transactions []model.Transaction) ([]model.LineItem, ResolveReport) {
	itemIDs := make(map[model.ItemKey]int64, len(items))
	for _, item := range items {
		itemIDs[item.Key()] = item.ItemID
	}
	txnIDs := make(map[int64]int64, len(transactions))
	for _, txn := range transactions {
		txnIDs[txn.CheckID] = txn.TransactionID
	}

	lineItems := make([]model.LineItem, 0, len(rows))
	var report ResolveReport
	for _, row := range rows {
		key := model.ItemKey{
			ItemName:    row.ItemName,
			Group:       row.Group,
			Category:    row.CategoryMain,
			SubCategory: row.SubCategory,
			CostCenter:  row.CostCenter,
		}

		itemID, itemOK := itemIDs[key]
		if !itemOK {
			report.UnresolvedItems++
			slog.Warn("line item does not resolve to an item",
				"item_name", row.ItemName,
				"check_id", row.CheckID)
			continue
		}

		txnID, txnOK := txnIDs[row.CheckID]
		if !txnOK {
			report.UnresolvedTransactions++
			slog.Warn("line item does not resolve to a transaction",
				"check_id", row.CheckID)
			continue
		}

		lineItems = append(lineItems, model.LineItem{
			LineItemID:    int64(len(lineItems) + 1),
			TransactionID: txnID,
			ItemID:        itemID,
			GrossRevenue:  row.GrossRevenue,
		})
	}

	return lineItems, report
}
