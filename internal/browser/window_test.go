package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_TwentyThreeRowsByTen(t *testing.T) {
	rows := make([]int, 23)
	for i := range rows {
		rows[i] = i
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, Window(rows, 1, 10))
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, Window(rows, 2, 10))
	assert.Equal(t, []int{20, 21, 22}, Window(rows, 3, 10))
	assert.Empty(t, Window(rows, 4, 10))
	assert.Equal(t, 3, TotalPages(len(rows), 10))
}

func TestWindow_EdgeCases(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Window([]int{1, 2, 3}, 0, 2), "page below 1 reads as page 1")
	assert.Nil(t, Window([]int{1, 2, 3}, 1, 0))
	assert.Zero(t, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 20, Offset(3, 10))
}
