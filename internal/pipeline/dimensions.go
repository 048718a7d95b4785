package pipeline

import (
	"log/slog"
	"sort"

	"github.com/tillflow/tillflow/internal/model"
)

// refKey joins items to the external category reference.
type refKey struct {
	Level1     string
	Level2     string
	CostCenter string
}

// DimensionBuilder derives the items and categories dimensions.
type DimensionBuilder struct{}

// NewDimensionBuilder creates a DimensionBuilder.
func NewDimensionBuilder() *DimensionBuilder {
	return &DimensionBuilder{}
}

// BuildCategories produces dim_categories verbatim from the external
// reference table; observed raw data never contributes rows. Margins
// come from the fixed margin-group mapping. References without an id
// column get sequential ids in sheet order.
func (b *DimensionBuilder) BuildCategories(refs []model.CategoryReference) []model.Category {
	categories := make([]model.Category, 0, len(refs))
	for i, ref := range refs {
		id := ref.CategoryID
		if id == 0 {
			id = int64(i + 1)
		}
		categories = append(categories, model.Category{
			CategoryID:  id,
			Level1:      ref.Level1,
			Level2:      ref.Level2,
			CostCenter:  ref.CostCenter,
			MarginGroup: ref.MarginGroup,
			Margin:      ref.MarginGroup.Margin(),
		})
	}
	return categories
}

// BuildItems derives dim_items from deduplicated rows. Each distinct
// identity key becomes one item; the unit price is the modal non-zero
// revenue (first-encountered on ties or when every value is distinct).
// Ids are 1-based in ascending key order so identical input always
// yields identical ids. Items without a reference match keep margin 0
// and category_id 0; the gap is counted, never fatal.
func (b *DimensionBuilder) BuildItems(rows []model.SaleRow, categories []model.Category) ([]model.Item, int) {
	revenues := make(map[model.ItemKey][]float64, len(rows))
	keys := make([]model.ItemKey, 0, len(rows))
	for _, row := range rows {
		key := model.ItemKey{
			ItemName:    row.ItemName,
			Group:       row.Group,
			Category:    row.CategoryMain,
			SubCategory: row.SubCategory,
			CostCenter:  row.CostCenter,
		}
		if _, ok := revenues[key]; !ok {
			keys = append(keys, key)
		}
		revenues[key] = append(revenues[key], row.GrossRevenue)
	}

	sort.Slice(keys, func(i, j int) bool {
		return lessItemKey(keys[i], keys[j])
	})

	byRef := make(map[refKey]model.Category, len(categories))
	for _, cat := range categories {
		byRef[refKey{Level1: cat.Level1, Level2: cat.Level2, CostCenter: cat.CostCenter}] = cat
	}

	items := make([]model.Item, 0, len(keys))
	gaps := 0
	for i, key := range keys {
		item := model.Item{
			ItemID:         int64(i + 1),
			ItemName:       key.ItemName,
			Group:          key.Group,
			Category:       key.Category,
			SubCategory:    key.SubCategory,
			ItemCostCenter: key.CostCenter,
			Price:          unitPrice(revenues[key]),
		}

		if cat, ok := byRef[refKey{Level1: key.Category, Level2: key.SubCategory, CostCenter: key.CostCenter}]; ok {
			item.CategoryID = cat.CategoryID
			item.Margin = cat.Margin
		} else {
			gaps++
			slog.Debug("no category reference for item",
				"item_name", key.ItemName,
				"category", key.Category,
				"sub_category", key.SubCategory,
				"cost_center", key.CostCenter)
		}

		item.EstCost = item.Price * (1 - item.Margin)
		items = append(items, item)
	}

	if gaps > 0 {
		slog.Warn("items missing category reference", "count", gaps)
	}
	return items, gaps
}

// unitPrice infers the typical unit price: the modal non-zero revenue,
// else the first non-zero value, else 0.
func unitPrice(revenues []float64) float64 {
	nonZero := make([]float64, 0, len(revenues))
	for _, v := range revenues {
		if v > 0 {
			nonZero = append(nonZero, v)
		}
	}
	if len(nonZero) == 0 {
		return 0
	}
	return mostFrequent(nonZero)
}

func lessItemKey(a, b model.ItemKey) bool {
	if a.ItemName != b.ItemName {
		return a.ItemName < b.ItemName
	}
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.SubCategory != b.SubCategory {
		return a.SubCategory < b.SubCategory
	}
	return a.CostCenter < b.CostCenter
}
