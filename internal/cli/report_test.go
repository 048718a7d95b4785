package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tillflow/tillflow/internal/pipeline"
	"github.com/tillflow/tillflow/internal/storage"
)

func TestRenderRunReport(t *testing.T) {
	report := pipeline.RunReport{
		Dedup: pipeline.DedupReport{
			RowsBefore:    100,
			RowsAfter:     95,
			RevenueBefore: 1000,
			RevenueAfter:  980,
		},
		Financial: pipeline.FinancialReport{NonZeroLines: 90, IntegerMultiples: 81},
		Resolve:   pipeline.ResolveReport{UnresolvedItems: 2},
		ParseWarnings: map[string]int{
			"timestamp": 3,
			"check_id":  1,
		},
		ReferenceGaps: 4,
	}
	counts := map[string]int{
		storage.TableItems:        10,
		storage.TableCategories:   5,
		storage.TableTransactions: 40,
		storage.TableLineItems:    95,
	}

	out := RenderRunReport(report, counts)

	assert.Contains(t, out, "5 (5.00% of input)")
	assert.Contains(t, out, "$20.00 (2.00% of original revenue)")
	assert.Contains(t, out, "81 of 90 non-zero lines (90.00%)")
	assert.Contains(t, out, "2 excluded")
	assert.Contains(t, out, "4 items without a category match")
	assert.Contains(t, out, "timestamp: 3")
	assert.Contains(t, out, "fact_line_items")
	assert.Contains(t, out, "95 rows")
}

func TestFormatColumnWarnings(t *testing.T) {
	assert.Nil(t, formatColumnWarnings(nil))
	assert.Equal(t,
		[]string{"a: 2", "b: 1"},
		formatColumnWarnings(map[string]int{"b": 1, "a": 2}))
}
