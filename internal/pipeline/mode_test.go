package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMostFrequent(t *testing.T) {
	t.Run("clear mode wins", func(t *testing.T) {
		assert.Equal(t, "b", mostFrequent([]string{"a", "b", "b"}))
	})

	t.Run("tie resolves to first encountered", func(t *testing.T) {
		assert.Equal(t, "a", mostFrequent([]string{"a", "b", "a", "b"}))
		assert.Equal(t, "b", mostFrequent([]string{"b", "a", "b", "a"}))
	})

	t.Run("all distinct resolves to first", func(t *testing.T) {
		assert.Equal(t, "x", mostFrequent([]string{"x", "y", "z"}))
	})

	t.Run("empty yields zero value", func(t *testing.T) {
		assert.Equal(t, "", mostFrequent[string](nil))
		assert.Zero(t, mostFrequent[float64](nil))
	})

	t.Run("works for floats", func(t *testing.T) {
		assert.InDelta(t, 3.5, mostFrequent([]float64{3.5, 7.0, 3.5}), 1e-9)
	})
}
