package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillflow/tillflow/internal/model"
)

// GetItems returns the loaded items dimension, ordered by item_id. The
// scoring annotator reads its work list from here.
func (s *SQLiteStorage) GetItems(ctx context.Context) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT item_id, item_name, "group", category, sub_category, price, item_cost_center, margin, est_cost, category_id
		FROM dim_items
		ORDER BY item_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ItemID, &item.ItemName, &item.Group, &item.Category, &item.SubCategory,
			&item.Price, &item.ItemCostCenter, &item.Margin, &item.EstCost, &item.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	slog.Debug("retrieved items", "count", len(items))
	return items, nil
}

// ReplaceItemScores writes the nutrition grades for the current items
// dimension, replacing any previous scoring run.
func (s *SQLiteStorage) ReplaceItemScores(ctx context.Context, scores []model.ItemScore) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS item_scores`); err != nil {
		return fmt.Errorf("failed to drop item_scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE item_scores (
		item_id INTEGER PRIMARY KEY,
		grade TEXT NOT NULL CHECK (grade IN ('A', 'B', 'C', 'D', 'E')),
		scored_at DATETIME NOT NULL,
		FOREIGN KEY (item_id) REFERENCES dim_items(item_id)
	)`); err != nil {
		return fmt.Errorf("failed to create item_scores: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO item_scores (item_id, grade, scored_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare item_scores insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, score := range scores {
		if _, err := stmt.ExecContext(ctx, score.ItemID, score.Grade, score.ScoredAt); err != nil {
			return fmt.Errorf("failed to insert score for item %d: %w", score.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}

	slog.Info("replaced item scores", "count", len(scores))
	return nil
}
