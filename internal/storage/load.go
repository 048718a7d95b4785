package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tillflow/tillflow/internal/model"
)

// Output table names.
const (
	TableItems        = "dim_items"
	TableCategories   = "dim_categories"
	TableTransactions = "fact_transactions"
	TableLineItems    = "fact_line_items"
)

// OutputTables lists the star-schema tables in load order.
var OutputTables = []string{TableItems, TableCategories, TableTransactions, TableLineItems}

var createStatements = map[string]string{
	TableItems: `CREATE TABLE dim_items (
		item_id INTEGER PRIMARY KEY,
		item_name TEXT NOT NULL,
		"group" TEXT NOT NULL,
		category TEXT NOT NULL,
		sub_category TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		item_cost_center TEXT NOT NULL,
		margin REAL NOT NULL DEFAULT 0,
		est_cost REAL NOT NULL DEFAULT 0,
		category_id INTEGER NOT NULL DEFAULT 0
	)`,
	TableCategories: `CREATE TABLE dim_categories (
		category_id INTEGER PRIMARY KEY,
		cat_level1 TEXT NOT NULL,
		cat_level2 TEXT NOT NULL,
		cat_cost_center TEXT NOT NULL,
		margin_group TEXT NOT NULL,
		margin REAL NOT NULL DEFAULT 0
	)`,
	TableTransactions: `CREATE TABLE fact_transactions (
		transaction_id INTEGER PRIMARY KEY,
		check_id INTEGER NOT NULL UNIQUE,
		timestamp DATETIME,
		total_amount REAL NOT NULL DEFAULT 0,
		num_items INTEGER NOT NULL DEFAULT 0,
		transaction_cost_center TEXT NOT NULL,
		top_group TEXT NOT NULL,
		has_beverage BOOLEAN NOT NULL DEFAULT 0,
		day_part TEXT NOT NULL
	)`,
	TableLineItems: `CREATE TABLE fact_line_items (
		line_item_id INTEGER PRIMARY KEY,
		transaction_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		gross_revenue REAL NOT NULL DEFAULT 0,
		margin REAL NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0,
		est_cost REAL NOT NULL DEFAULT 0,
		est_profit REAL NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (transaction_id) REFERENCES fact_transactions(transaction_id),
		FOREIGN KEY (item_id) REFERENCES dim_items(item_id)
	)`,
}

// ReplaceDataset writes all four output tables, replacing any previous
// load. Drop, create and insert all run in a single transaction and
// commit only when every table loaded, so a failure mid-load cannot
// leave a partially replaced schema behind.
func (s *SQLiteStorage) ReplaceDataset(ctx context.Context, ds model.Dataset) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range OutputTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, createStatements[table]); err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
	}

	if err := insertItems(ctx, tx, ds.Items); err != nil {
		return err
	}
	if err := insertCategories(ctx, tx, ds.Categories); err != nil {
		return err
	}
	if err := insertTransactions(ctx, tx, ds.Transactions); err != nil {
		return err
	}
	if err := insertLineItems(ctx, tx, ds.LineItems); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}

	slog.Info("replaced star-schema tables",
		"items", len(ds.Items),
		"categories", len(ds.Categories),
		"transactions", len(ds.Transactions),
		"line_items", len(ds.LineItems))
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, items []model.Item) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dim_items (item_id, item_name, "group", category, sub_category, price, item_cost_center, margin, est_cost, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dim_items insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ItemID, item.ItemName, item.Group, item.Category, item.SubCategory,
			item.Price, item.ItemCostCenter, item.Margin, item.EstCost, item.CategoryID); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", item.ItemID, err)
		}
	}
	return nil
}

func insertCategories(ctx context.Context, tx *sql.Tx, categories []model.Category) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dim_categories (category_id, cat_level1, cat_level2, cat_cost_center, margin_group, margin)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dim_categories insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, cat := range categories {
		if _, err := stmt.ExecContext(ctx,
			cat.CategoryID, cat.Level1, cat.Level2, cat.CostCenter, string(cat.MarginGroup), cat.Margin); err != nil {
			return fmt.Errorf("failed to insert category %d: %w", cat.CategoryID, err)
		}
	}
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fact_transactions (transaction_id, check_id, timestamp, total_amount, num_items, transaction_cost_center, top_group, has_beverage, day_part)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fact_transactions insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		// Zero timestamps (unparseable source) are stored as NULL.
		var ts any
		if !txn.Timestamp.IsZero() {
			ts = txn.Timestamp
		}
		if _, err := stmt.ExecContext(ctx,
			txn.TransactionID, txn.CheckID, ts, txn.TotalAmount, txn.NumItems,
			txn.CostCenter, txn.TopGroup, txn.HasBeverage, txn.DayPart); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", txn.TransactionID, err)
		}
	}
	return nil
}

func insertLineItems(ctx context.Context, tx *sql.Tx, lineItems []model.LineItem) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fact_line_items (line_item_id, transaction_id, item_id, gross_revenue, margin, price, est_cost, est_profit, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fact_line_items insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, line := range lineItems {
		if _, err := stmt.ExecContext(ctx,
			line.LineItemID, line.TransactionID, line.ItemID, line.GrossRevenue,
			line.Margin, line.Price, line.EstCost, line.EstProfit, line.Quantity); err != nil {
			return fmt.Errorf("failed to insert line item %d: %w", line.LineItemID, err)
		}
	}
	return nil
}

// TableCounts returns the row count of each output table after a load.
func (s *SQLiteStorage) TableCounts(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(OutputTables))
	for _, table := range OutputTables {
		var n int
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
