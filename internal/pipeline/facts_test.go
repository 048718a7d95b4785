package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillflow/tillflow/internal/model"
)

func TestBuildTransactions(t *testing.T) {
	facts := NewFactBuilder()

	t.Run("scenario two-line check", func(t *testing.T) {
		a := saleRow(100, "Wrap", "Food>Wraps", 5.00)
		b := saleRow(100, "Iced Tea", "Drinks>Cold", 7.50)

		transactions := facts.BuildTransactions([]model.SaleRow{a, b})
		require.Len(t, transactions, 1)

		txn := transactions[0]
		assert.Equal(t, int64(1), txn.TransactionID)
		assert.Equal(t, int64(100), txn.CheckID)
		assert.InDelta(t, 12.50, txn.TotalAmount, 1e-9)
		assert.Equal(t, int64(2), txn.NumItems)
		assert.Equal(t, a.Timestamp, txn.Timestamp)
		assert.Equal(t, "Cafe", txn.CostCenter)
		assert.Equal(t, "Lunch", txn.DayPart)
	})

	t.Run("ids follow ascending check id", func(t *testing.T) {
		rows := []model.SaleRow{
			saleRow(300, "Wrap", "Food>Wraps", 5.00),
			saleRow(100, "Tea", "Drinks>Cold", 3.50),
			saleRow(200, "Coffee", "Drinks>Hot", 2.50),
		}
		transactions := facts.BuildTransactions(rows)
		require.Len(t, transactions, 3)
		assert.Equal(t, []int64{100, 200, 300}, []int64{
			transactions[0].CheckID, transactions[1].CheckID, transactions[2].CheckID,
		})
		assert.Equal(t, []int64{1, 2, 3}, []int64{
			transactions[0].TransactionID, transactions[1].TransactionID, transactions[2].TransactionID,
		})
	})

	t.Run("top group is modal with first-seen tie-break", func(t *testing.T) {
		a := saleRow(5, "Tea", "Drinks", 3.50)
		a.Group = "Beverages"
		b := saleRow(5, "Wrap", "Food", 5.00)
		b.Group = "Meals"
		c := saleRow(5, "Coffee", "Drinks", 2.50)
		c.Group = "Beverages"

		transactions := facts.BuildTransactions([]model.SaleRow{a, b, c})
		require.Len(t, transactions, 1)
		assert.Equal(t, "Beverages", transactions[0].TopGroup)
	})

	t.Run("first row wins scalar fields", func(t *testing.T) {
		a := saleRow(6, "Tea", "Drinks", 3.50)
		a.DayPart = "Breakfast"
		a.HasBeverage = true
		b := saleRow(6, "Wrap", "Food", 5.00)
		b.DayPart = "Lunch"
		b.HasBeverage = false

		transactions := facts.BuildTransactions([]model.SaleRow{a, b})
		require.Len(t, transactions, 1)
		assert.Equal(t, "Breakfast", transactions[0].DayPart)
		assert.True(t, transactions[0].HasBeverage)
	})
}

func TestBuildLineItems(t *testing.T) {
	facts := NewFactBuilder()
	dims := NewDimensionBuilder()

	rows := []model.SaleRow{
		saleRow(100, "Wrap", "Food>Wraps", 5.00),
		saleRow(100, "Iced Tea", "Drinks>Cold", 7.50),
		saleRow(200, "Wrap", "Food>Wraps", 5.00),
	}
	items, _ := dims.BuildItems(rows, nil)
	transactions := facts.BuildTransactions(rows)

	t.Run("resolves both foreign keys", func(t *testing.T) {
		lineItems, report := facts.BuildLineItems(rows, items, transactions)
		require.Len(t, lineItems, 3)
		assert.Zero(t, report.Total())

		itemIDs := make(map[int64]bool)
		for _, item := range items {
			itemIDs[item.ItemID] = true
		}
		txnIDs := make(map[int64]bool)
		for _, txn := range transactions {
			txnIDs[txn.TransactionID] = true
		}
		for i, line := range lineItems {
			assert.Equal(t, int64(i+1), line.LineItemID)
			assert.True(t, itemIDs[line.ItemID], "line %d item fk", i)
			assert.True(t, txnIDs[line.TransactionID], "line %d txn fk", i)
		}
	})

	t.Run("unresolved item is excluded and counted", func(t *testing.T) {
		stray := saleRow(100, "Ghost Item", "Nowhere", 1.00)
		lineItems, report := facts.BuildLineItems(append(rows, stray), items, transactions)
		assert.Len(t, lineItems, 3)
		assert.Equal(t, 1, report.UnresolvedItems)
		assert.Zero(t, report.UnresolvedTransactions)
	})

	t.Run("unresolved transaction is excluded and counted", func(t *testing.T) {
		stray := saleRow(999, "Wrap", "Food>Wraps", 5.00)
		lineItems, report := facts.BuildLineItems(append(rows, stray), items, transactions)
		assert.Len(t, lineItems, 3)
		assert.Equal(t, 1, report.UnresolvedTransactions)
	})

	t.Run("line ids stay contiguous after exclusions", func(t *testing.T) {
		stray := saleRow(100, "Ghost Item", "Nowhere", 1.00)
		mixed := []model.SaleRow{rows[0], stray, rows[1], rows[2]}
		lineItems, _ := facts.BuildLineItems(mixed, items, transactions)
		require.Len(t, lineItems, 3)
		for i, line := range lineItems {
			assert.Equal(t, int64(i+1), line.LineItemID)
		}
	})
}
