package model

import "time"

// MarginGroup is the coarse product classification used to look up a
// cost margin rate.
type MarginGroup string

// Margin group constants.
const (
	MarginGroupBeverage MarginGroup = "Beverage"
	MarginGroupFood     MarginGroup = "Food"
	MarginGroupSnacks   MarginGroup = "Snacks"
)

// Margin returns the cost margin rate for the group. Unrecognized
// groups yield 0, which downstream treats as "cost equals revenue".
func (g MarginGroup) Margin() float64 {
	switch g {
	case MarginGroupBeverage:
		return 0.6
	case MarginGroupFood:
		return 0.4
	case MarginGroupSnacks:
		return 0.3
	default:
		return 0
	}
}

// Item is one row of the dim_items dimension: a distinct sellable item
// identified by its full identity key.
type Item struct {
	ItemName       string
	Group          string
	Category       string
	SubCategory    string
	ItemCostCenter string
	ItemID         int64
	CategoryID     int64
	Price          float64
	Margin         float64
	EstCost        float64
}

// Key returns the item identity key. Two raw rows with equal keys
// describe the same item.
func (i *Item) Key() ItemKey {
	return ItemKey{
		ItemName:    i.ItemName,
		Group:       i.Group,
		Category:    i.Category,
		SubCategory: i.SubCategory,
		CostCenter:  i.ItemCostCenter,
	}
}

// ItemKey is the composite natural key of an item.
type ItemKey struct {
	ItemName    string
	Group       string
	Category    string
	SubCategory string
	CostCenter  string
}

// Category is one row of the dim_categories dimension, sourced from the
// external reference table.
type Category struct {
	Level1      string
	Level2      string
	CostCenter  string
	MarginGroup MarginGroup
	CategoryID  int64
	Margin      float64
}

// Transaction is one row of the fact_transactions table: a single
// checkout identified by its natural check_id.
type Transaction struct {
	Timestamp     time.Time
	CostCenter    string
	TopGroup      string
	DayPart       string
	TransactionID int64
	CheckID       int64
	NumItems      int64
	TotalAmount   float64
	HasBeverage   bool
}

// LineItem is one row of the fact_line_items table: a single sold item
// resolved against the item and transaction surrogate keys.
type LineItem struct {
	LineItemID    int64
	TransactionID int64
	ItemID        int64
	Quantity      int64
	GrossRevenue  float64
	Margin        float64
	Price         float64
	EstCost       float64
	EstProfit     float64
}

// Dataset is the full star-schema output of one pipeline run. Every run
// rebuilds it from scratch; the sink replaces prior tables wholesale.
type Dataset struct {
	Items        []Item
	Categories   []Category
	Transactions []Transaction
	LineItems    []LineItem
}

// ItemScore is a nutrition grade (A-E) assigned to a dimension item by
// the external scoring service.
type ItemScore struct {
	ScoredAt time.Time
	Grade    string
	ItemID   int64
}
