package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeListInsertKeepsOrder(t *testing.T) {
	var f freeList
	f.insert(Block{Start: 500, End: 599})
	f.insert(Block{Start: 100, End: 199})
	f.insert(Block{Start: 300, End: 399})

	assert.Equal(t, []Block{
		{Start: 100, End: 199},
		{Start: 300, End: 399},
		{Start: 500, End: 599},
	}, f.all())
	assert.Equal(t, int64(300), f.total())
}

func TestFreeListMergesAdjacent(t *testing.T) {
	tests := []struct {
		name   string
		insert []Block
		want   []Block
	}{
		{
			"merge with predecessor",
			[]Block{{Start: 0, End: 99}, {Start: 100, End: 199}},
			[]Block{{Start: 0, End: 199}},
		},
		{
			"merge with successor",
			[]Block{{Start: 100, End: 199}, {Start: 0, End: 99}},
			[]Block{{Start: 0, End: 199}},
		},
		{
			"bridge both neighbors",
			[]Block{{Start: 0, End: 99}, {Start: 200, End: 299}, {Start: 100, End: 199}},
			[]Block{{Start: 0, End: 299}},
		},
		{
			"gap stays split",
			[]Block{{Start: 0, End: 99}, {Start: 200, End: 299}},
			[]Block{{Start: 0, End: 99}, {Start: 200, End: 299}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f freeList
			for _, b := range tt.insert {
				f.insert(b)
			}
			assert.Equal(t, tt.want, f.all())
		})
	}
}

func TestFreeListTake(t *testing.T) {
	var f freeList

	_, ok := f.take(100)
	assert.False(t, ok, "empty list has nothing to take")

	f.insert(Block{Start: 0, End: 99})
	b, ok := f.take(1000)
	require.True(t, ok)
	assert.Equal(t, Block{Start: 0, End: 99}, b, "whole range fits under max")
	assert.Empty(t, f.all())
}

func TestFreeListTakeSplitsOversizedRange(t *testing.T) {
	var f freeList
	f.insert(Block{Start: 0, End: 399})

	b, ok := f.take(100)
	require.True(t, ok)
	assert.Equal(t, Block{Start: 0, End: 99}, b)
	assert.Equal(t, []Block{{Start: 100, End: 399}}, f.all(), "remainder stays in the list")
}
