package xsample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseClampsToLength(t *testing.T) {
	items := []int{1, 2, 3}
	got := Choose(items, 10)
	assert.Len(t, got, 3)
}

func TestChooseDistinctAndSubset(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got := Choose(items, 4)
	assert.Len(t, got, 4)

	seen := make(map[int]bool)
	for _, v := range got {
		assert.False(t, seen[v], "sampling without replacement must not repeat elements")
		seen[v] = true
		assert.Contains(t, items, v)
	}
}

func TestChooseZeroOrEmpty(t *testing.T) {
	assert.Nil(t, Choose([]int{1, 2, 3}, 0))
	assert.Nil(t, Choose([]int{}, 3))
}

func TestChooseDoesNotMutateInput(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	cp := append([]int(nil), items...)
	_ = Choose(items, 3)
	assert.Equal(t, cp, items)
}
