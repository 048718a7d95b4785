// Package model defines the core domain models used throughout the application.
package model

import "time"

// RawSaleRow is a single row of the POS export exactly as ingested.
// Every field is the untouched cell text; it is never mutated, only read.
type RawSaleRow struct {
	CheckID         string
	ItemName        string
	Category        string
	CostCenter      string
	GrossRevenue    string
	Date            string
	SaleTimeExact   string
	DayPart         string
	BeverageOnCheck string
}

// SaleRow is a normalized sale row: one sold item on one check.
type SaleRow struct {
	Timestamp     time.Time
	ItemName      string
	Group         string
	Category      string // original category text, e.g. "Drinks>Cold"
	CategoryMain  string
	SubCategory   string
	CostCenter    string
	DayPart       string
	Date          string
	SaleTimeExact string
	CheckID       int64
	GrossRevenue  float64
	HasBeverage   bool
}

// CategoryReference is one row of the external category reference table,
// mapping a category hierarchy and cost center to a margin group.
type CategoryReference struct {
	Level1      string
	Level2      string
	CostCenter  string
	MarginGroup MarginGroup
	CategoryID  int64 // 0 when the reference sheet carries no id column
}
