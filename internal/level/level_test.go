package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	testCases := []struct {
		name        string
		count       int64
		level       int
		nextLevelAt int64
	}{
		{name: "no items", count: 0, level: 1, nextLevelAt: 2},
		{name: "one item", count: 1, level: 1, nextLevelAt: 2},
		{name: "first step", count: 2, level: 2, nextLevelAt: 5},
		{name: "just below step", count: 4, level: 2, nextLevelAt: 5},
		{name: "mid curve", count: 20, level: 5, nextLevelAt: 35},
		{name: "just below max", count: 159, level: 9, nextLevelAt: 160},
		{name: "max level", count: 160, level: 10, nextLevelAt: 0},
		{name: "beyond max", count: 10_000, level: 10, nextLevelAt: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			agg := Compute(tc.count)
			assert.Equal(t, tc.level, agg.Level)
			assert.Equal(t, tc.count, agg.Experience)
			assert.Equal(t, tc.nextLevelAt, agg.NextLevelAt)
		})
	}
}

func TestComputeNegativeCount(t *testing.T) {
	agg := Compute(-5)
	assert.Equal(t, 1, agg.Level)
	assert.Equal(t, int64(0), agg.Experience)
}

func TestComputeMonotonic(t *testing.T) {
	prev := Compute(0).Level
	for count := int64(1); count <= 200; count++ {
		cur := Compute(count).Level
		assert.GreaterOrEqual(t, cur, prev, "level regressed at count %d", count)
		prev = cur
	}
	assert.Equal(t, MaxLevel, prev)
}
