// Package ingest reads the POS export and the category reference
// workbook into row tables for the pipeline. Headers are matched on
// their canonical slug, so "Check ID", "check-id" and "check_id" all
// land on the same column.
package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tillflow/tillflow/internal/common"
	"github.com/tillflow/tillflow/internal/model"
	"github.com/tillflow/tillflow/internal/pipeline"
)

// Default worksheet names, matching the upstream export.
const (
	DefaultSalesSheet     = "POS"
	DefaultReferenceSheet = "dim_categories"
)

// salesColumns are the required columns of the raw POS sheet.
var salesColumns = []string{
	"check_id",
	"item_name",
	"category",
	"cost_center",
	"gross_revenue",
	"date",
	"sale_time_exact",
	"day_part",
	"is_beverage_on_check",
}

// referenceColumns are the required columns of the category reference
// sheet. category_id is optional; ids are assigned in sheet order when
// it is absent.
var referenceColumns = []string{
	"cat_level1",
	"cat_level2",
	"cat_cost_center",
	"margin_group",
}

// ReadSales loads the raw POS sheet. A missing sheet, missing required
// column, or a sheet with no data rows is fatal.
func ReadSales(path, sheet string) ([]model.RawSaleRow, error) {
	if sheet == "" {
		sheet = DefaultSalesSheet
	}

	rows, index, err := readSheet(path, sheet, salesColumns)
	if err != nil {
		return nil, err
	}

	sales := make([]model.RawSaleRow, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, model.RawSaleRow{
			CheckID:         cell(row, index["check_id"]),
			ItemName:        cell(row, index["item_name"]),
			Category:        cell(row, index["category"]),
			CostCenter:      cell(row, index["cost_center"]),
			GrossRevenue:    cell(row, index["gross_revenue"]),
			Date:            cell(row, index["date"]),
			SaleTimeExact:   cell(row, index["sale_time_exact"]),
			DayPart:         cell(row, index["day_part"]),
			BeverageOnCheck: cell(row, index["is_beverage_on_check"]),
		})
	}

	if len(sales) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no data rows", common.ErrEmptyInput, sheet)
	}
	return sales, nil
}

// ReadCategoryReference loads the external category reference sheet.
func ReadCategoryReference(path, sheet string) ([]model.CategoryReference, error) {
	if sheet == "" {
		sheet = DefaultReferenceSheet
	}

	rows, index, err := readSheet(path, sheet, referenceColumns)
	if err != nil {
		return nil, err
	}

	idCol, hasID := index["category_id"]

	refs := make([]model.CategoryReference, 0, len(rows))
	for _, row := range rows {
		ref := model.CategoryReference{
			Level1:      cell(row, index["cat_level1"]),
			Level2:      cell(row, index["cat_level2"]),
			CostCenter:  cell(row, index["cat_cost_center"]),
			MarginGroup: model.MarginGroup(cell(row, index["margin_group"])),
		}
		if hasID {
			if id, err := strconv.ParseInt(cell(row, idCol), 10, 64); err == nil {
				ref.CategoryID = id
			}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// readSheet opens the workbook and returns the data rows plus a map
// from canonical column slug to column index.
func readSheet(path, sheet string, required []string) ([][]string, map[string]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q in %s", common.ErrMissingSheet, sheet, path)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", common.ErrEmptyInput, sheet)
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		slug := pipeline.SlugColumn(header)
		if slug == "" {
			continue
		}
		if _, ok := index[slug]; !ok {
			index[slug] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q lacks %s", common.ErrMissingColumn, sheet, strings.Join(missing, ", "))
	}

	return rows[1:], index, nil
}

// cell returns the trimmed cell value, tolerating the ragged rows
// excelize produces when trailing cells are empty.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
