// Package score estimates a nutrition grade (A-E) for menu items by
// calling an external text-generation service. It is a best-effort
// batch annotator: a malformed response or failed call degrades to the
// default grade, never to an error for the caller.
package score

import (
	"context"
	"strings"
)

// DefaultGrade is returned whenever the service cannot produce a
// usable grade.
const DefaultGrade = "C"

// Client defines the interface for grade providers.
type Client interface {
	Score(ctx context.Context, itemName, category, subCategory string) (string, error)
}

// ValidGrade reports whether s is one of the five grade letters.
func ValidGrade(s string) bool {
	switch s {
	case "A", "B", "C", "D", "E":
		return true
	default:
		return false
	}
}

// buildPrompt renders the classification prompt for one item.
func buildPrompt(itemName, category, subCategory string) string {
	var b strings.Builder
	b.WriteString("You are a nutritionist. Classify the following cafeteria item into a Nutri-Score (A, B, C, D, or E).\n\n")
	b.WriteString("Item: \"" + itemName + "\"\n")
	b.WriteString("Category: \"" + category + "\" (" + subCategory + ")\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Nutri-Score A: Highest nutritional quality (Water, Fruits, Vegetables, Unprocessed lean protein).\n")
	b.WriteString("- Nutri-Score E: Lowest nutritional quality (Sugary drinks, Candy, Deep fried foods).\n")
	b.WriteString("- If it is Water or Unsweetened Tea/Coffee, score it A.\n")
	b.WriteString("- If it is a Soda or Energy Drink, score it E.\n")
	b.WriteString("- For ambiguous items, estimate based on typical ingredients.\n\n")
	b.WriteString("Return ONLY the single letter (A, B, C, D, or E). Do not write any other text.")
	return b.String()
}
