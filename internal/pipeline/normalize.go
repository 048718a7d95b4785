// Package pipeline implements the POS star-schema transformation: raw
// sale rows are normalized, deduplicated, and rebuilt into dimension
// and fact tables with deterministic surrogate keys.
package pipeline

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tillflow/tillflow/internal/model"
)

// timestampLayouts are tried in order when combining date and time-of-day.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// FoldAccents strips diacritics so that "Entrée" compares equal to
// "Entree". Decompose, remove nonspacing marks, recompose.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// SlugColumn canonicalizes a raw column header: trimmed, lower-cased,
// spaces and hyphens collapsed into single underscores, everything
// outside [a-z0-9_] dropped.
func SlugColumn(name string) string {
	ascii := FoldAccents(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevUnderscore = false
		case r == ' ' || r == '-' || r == '_':
			if !prevUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// SplitItemName splits a raw item name on the first " - " separator
// into its group prefix and the item proper. Without a separator both
// halves are the original string.
func SplitItemName(raw string) (group, name string) {
	if left, right, ok := strings.Cut(raw, " - "); ok {
		return left, right
	}
	return raw, raw
}

// SplitCategory splits a raw category on the first ">" into main and
// sub-category, trimming both. Without a separator both halves are the
// trimmed original.
func SplitCategory(raw string) (main, sub string) {
	if left, right, ok := strings.Cut(raw, ">"); ok {
		return strings.TrimSpace(left), strings.TrimSpace(right)
	}
	trimmed := strings.TrimSpace(raw)
	return trimmed, trimmed
}

// NormalizeReport counts the per-column parse failures encountered
// while cleaning raw rows. Failed fields fall back to defaults; no row
// is dropped.
type NormalizeReport struct {
	ColumnWarnings map[string]int
}

func (r *NormalizeReport) warn(column string) {
	if r.ColumnWarnings == nil {
		r.ColumnWarnings = make(map[string]int)
	}
	r.ColumnWarnings[column]++
}

// TotalWarnings returns the sum of all per-column warning counts.
func (r *NormalizeReport) TotalWarnings() int {
	total := 0
	for _, n := range r.ColumnWarnings {
		total += n
	}
	return total
}

// Normalizer cleans raw POS rows into canonical sale rows.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts every raw row into a SaleRow. Unparseable fields
// become defined defaults and are counted in the report; the input is
// never mutated and no row is dropped.
func (n *Normalizer) Normalize(raw []model.RawSaleRow) ([]model.SaleRow, NormalizeReport) {
	rows := make([]model.SaleRow, 0, len(raw))
	var report NormalizeReport

	for _, r := range raw {
		row := model.SaleRow{
			Category:      strings.TrimSpace(r.Category),
			CostCenter:    strings.TrimSpace(r.CostCenter),
			DayPart:       strings.TrimSpace(r.DayPart),
			Date:          strings.TrimSpace(r.Date),
			SaleTimeExact: strings.TrimSpace(r.SaleTimeExact),
			HasBeverage:   strings.EqualFold(strings.TrimSpace(r.BeverageOnCheck), "yes"),
		}

		row.Group, row.ItemName = SplitItemName(strings.TrimSpace(r.ItemName))
		row.CategoryMain, row.SubCategory = SplitCategory(row.Category)

		checkID, err := parseCheckID(r.CheckID)
		if err != nil {
			report.warn("check_id")
		}
		row.CheckID = checkID

		revenue, err := parseMoney(r.GrossRevenue)
		if err != nil {
			report.warn("gross_revenue")
		}
		row.GrossRevenue = revenue

		ts, err := parseTimestamp(row.Date, row.SaleTimeExact)
		if err != nil {
			report.warn("timestamp")
		}
		row.Timestamp = ts

		rows = append(rows, row)
	}

	return rows, report
}

// parseCheckID accepts plain integers and the float renderings excel
// produces for numeric cells ("100.0").
func parseCheckID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// parseTimestamp combines the date and exact sale time columns into one
// timestamp. A zero time (plus a counted warning) stands in for
// unparseable input; it is never an error for the row.
func parseTimestamp(date, timeOfDay string) (time.Time, error) {
	combined := strings.TrimSpace(date + " " + timeOfDay)
	if combined == "" {
		return time.Time{}, strconv.ErrSyntax
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, combined)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
