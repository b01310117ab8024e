package functional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinctKeepsFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"Bob", "Alice", "Carol"}, Distinct([]string{"Bob", "Alice", "Bob", "Carol", "Alice"}))
	assert.Empty(t, Distinct([]int64{}))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []int{5, 3}, Map([]string{"Alice", "Bob"}, func(s string) int { return len(s) }))
}
