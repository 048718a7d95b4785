package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillflow/tillflow/internal/model"
)

func TestSlugColumn(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already canonical", input: "check_id", want: "check_id"},
		{name: "spaces and casing", input: " Check ID ", want: "check_id"},
		{name: "hyphens", input: "check-id", want: "check_id"},
		{name: "mixed separators collapse", input: "Gross - Revenue", want: "gross_revenue"},
		{name: "strips punctuation", input: "Sale Time (Exact)", want: "sale_time_exact"},
		{name: "accented header", input: "Catégorie", want: "categorie"},
		{name: "trailing separator", input: "day part-", want: "day_part"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlugColumn(tt.input))
		})
	}
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Entree", FoldAccents("Entrée"))
	assert.Equal(t, "Cafe au lait", FoldAccents("Café au lait"))
	assert.Equal(t, "plain", FoldAccents("plain"))
}

func TestSplitItemName(t *testing.T) {
	t.Run("with separator", func(t *testing.T) {
		group, name := SplitItemName("Beverages - Iced Tea")
		assert.Equal(t, "Beverages", group)
		assert.Equal(t, "Iced Tea", name)
	})

	t.Run("splits on first separator only", func(t *testing.T) {
		group, name := SplitItemName("Combos - Burger - Large")
		assert.Equal(t, "Combos", group)
		assert.Equal(t, "Burger - Large", name)
	})

	t.Run("without separator both halves equal", func(t *testing.T) {
		group, name := SplitItemName("Iced Tea")
		assert.Equal(t, "Iced Tea", group)
		assert.Equal(t, "Iced Tea", name)
	})

	t.Run("plain hyphen is not a separator", func(t *testing.T) {
		group, name := SplitItemName("Coca-Cola")
		assert.Equal(t, "Coca-Cola", group)
		assert.Equal(t, "Coca-Cola", name)
	})
}

func TestSplitCategory(t *testing.T) {
	t.Run("with separator", func(t *testing.T) {
		main, sub := SplitCategory("Drinks>Cold")
		assert.Equal(t, "Drinks", main)
		assert.Equal(t, "Cold", sub)
	})

	t.Run("trims both halves", func(t *testing.T) {
		main, sub := SplitCategory(" Drinks > Cold ")
		assert.Equal(t, "Drinks", main)
		assert.Equal(t, "Cold", sub)
	})

	t.Run("without separator both halves equal", func(t *testing.T) {
		main, sub := SplitCategory("Drinks")
		assert.Equal(t, "Drinks", main)
		assert.Equal(t, "Drinks", sub)
	})
}

func TestNormalize(t *testing.T) {
	normalizer := NewNormalizer()

	t.Run("scenario iced tea", func(t *testing.T) {
		rows, report := normalizer.Normalize([]model.RawSaleRow{{
			CheckID:         "100",
			ItemName:        "Beverages - Iced Tea",
			Category:        "Drinks>Cold",
			CostCenter:      "Cafe",
			GrossRevenue:    "3.50",
			Date:            "2024-03-01",
			SaleTimeExact:   "12:30:00",
			DayPart:         "Lunch",
			BeverageOnCheck: "Yes",
		}})
		require.Len(t, rows, 1)
		assert.Equal(t, 0, report.TotalWarnings())

		row := rows[0]
		assert.Equal(t, "Beverages", row.Group)
		assert.Equal(t, "Iced Tea", row.ItemName)
		assert.Equal(t, "Drinks", row.CategoryMain)
		assert.Equal(t, "Cold", row.SubCategory)
		assert.Equal(t, int64(100), row.CheckID)
		assert.InDelta(t, 3.50, row.GrossRevenue, 1e-9)
		assert.True(t, row.HasBeverage)
		assert.Equal(t, "2024-03-01 12:30:00", row.Timestamp.Format("2006-01-02 15:04:05"))
	})

	t.Run("beverage flag is yes-literal only", func(t *testing.T) {
		tests := []struct {
			raw  string
			want bool
		}{
			{"yes", true},
			{" YES ", true},
			{"no", false},
			{"y", false},
			{"", false},
			{"true", false},
		}
		for _, tt := range tests {
			rows, _ := normalizer.Normalize([]model.RawSaleRow{{BeverageOnCheck: tt.raw}})
			assert.Equal(t, tt.want, rows[0].HasBeverage, "raw %q", tt.raw)
		}
	})

	t.Run("unparseable timestamp keeps row with warning", func(t *testing.T) {
		rows, report := normalizer.Normalize([]model.RawSaleRow{{
			CheckID:       "7",
			GrossRevenue:  "1.00",
			Date:          "not a date",
			SaleTimeExact: "sometime",
		}})
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Timestamp.IsZero())
		assert.Equal(t, 1, report.ColumnWarnings["timestamp"])
	})

	t.Run("excel float check id", func(t *testing.T) {
		rows, report := normalizer.Normalize([]model.RawSaleRow{{CheckID: "100.0"}})
		assert.Equal(t, int64(100), rows[0].CheckID)
		assert.Equal(t, 0, report.ColumnWarnings["check_id"])
	})

	t.Run("currency formatted revenue", func(t *testing.T) {
		rows, _ := normalizer.Normalize([]model.RawSaleRow{{GrossRevenue: "$1,234.50"}})
		assert.InDelta(t, 1234.50, rows[0].GrossRevenue, 1e-9)
	})

	t.Run("bad revenue defaults to zero with warning", func(t *testing.T) {
		rows, report := normalizer.Normalize([]model.RawSaleRow{{GrossRevenue: "n/a"}})
		assert.Zero(t, rows[0].GrossRevenue)
		assert.Equal(t, 1, report.ColumnWarnings["gross_revenue"])
	})
}
