package coordinator

import "sort"

// freeList holds keyspace ranges abandoned by disconnected workers,
// sorted by start with adjacent ranges merged. Allocation draws from
// here before the cursor extends into fresh keyspace, so abandoned
// ranges are re-scanned promptly and exactly once.
//
// The obvious alternative, rolling the cursor back to the abandoned
// block's start, re-issues ranges a third worker may legitimately hold
// when two non-contiguous blocks are released concurrently. The list
// stays tiny in practice: at most one entry per disconnect not yet
// re-issued.
type freeList struct {
	blocks []Block
}

// insert adds a block, keeping the list sorted and merging with
// neighbors that touch it
func (f *freeList) insert(b Block) {
	i := sort.Search(len(f.blocks), func(i int) bool {
		return f.blocks[i].Start > b.Start
	})

	f.blocks = append(f.blocks, Block{})
	copy(f.blocks[i+1:], f.blocks[i:])
	f.blocks[i] = b

	// Merge with predecessor
	if i > 0 && f.blocks[i-1].End+1 >= f.blocks[i].Start {
		if f.blocks[i].End > f.blocks[i-1].End {
			f.blocks[i-1].End = f.blocks[i].End
		}
		f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
		i--
	}

	// Merge with successor
	if i+1 < len(f.blocks) && f.blocks[i].End+1 >= f.blocks[i+1].Start {
		if f.blocks[i+1].End > f.blocks[i].End {
			f.blocks[i].End = f.blocks[i+1].End
		}
		f.blocks = append(f.blocks[:i+1], f.blocks[i+2:]...)
	}
}

// take removes and returns the lowest range, capped at max values.
// A range larger than max is split and its tail stays in the list.
func (f *freeList) take(max int64) (Block, bool) {
	if len(f.blocks) == 0 {
		return Block{}, false
	}

	b := f.blocks[0]
	if b.Size() <= max {
		f.blocks = f.blocks[1:]
		return b, true
	}

	taken := Block{Start: b.Start, End: b.Start + max - 1}
	f.blocks[0].Start = taken.End + 1
	return taken, true
}

// total returns the number of values held in the list
func (f *freeList) total() int64 {
	var n int64
	for _, b := range f.blocks {
		n += b.Size()
	}
	return n
}

// all returns a copy of the held ranges
func (f *freeList) all() []Block {
	out := make([]Block, len(f.blocks))
	copy(out, f.blocks)
	return out
}
