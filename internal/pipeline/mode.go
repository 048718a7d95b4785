package pipeline

// mostFrequent returns the modal value of a slice. Ties, and the
// no-mode case where every value is distinct, resolve to the value
// encountered first, so the result depends only on input order. The
// same reducer backs dedup retention, item pricing, and transaction
// top-group selection.
func mostFrequent[T comparable](values []T) T {
	var zero T
	if len(values) == 0 {
		return zero
	}

	counts := make(map[T]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := values[0]
	bestCount := counts[best]
	seen := make(map[T]bool, len(counts))
	seen[best] = true
	for _, v := range values[1:] {
		if seen[v] {
			continue
		}
		seen[v] = true
		// Strictly greater keeps the first-encountered winner on ties.
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
