package coordinator

import (
	"sync"
)

// Block is a closed sub-range [Start, End] of the keyspace, assigned to
// exactly one worker at a time
type Block struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Size returns the number of values covered by the block
func (b Block) Size() int64 {
	return b.End - b.Start + 1
}

// GrantKind discriminates the outcome of an allocation request
type GrantKind int

const (
	// GrantWork carries a block to scan
	GrantWork GrantKind = iota
	// GrantNoWork means the keyspace is exhausted with no match yet;
	// the coordinator can sit in this state indefinitely
	GrantNoWork
	// GrantStop means a match was recorded and no further work is issued
	GrantStop
)

// Grant is the result of an allocation request. Block is only valid
// when Kind is GrantWork.
type Grant struct {
	Kind  GrantKind
	Block Block
}

// worker is one registry entry: the declared core count and the
// currently outstanding block, if any
type worker struct {
	cores int
	block *Block
}

// Coordinator owns the authoritative shared search state: the
// allocation cursor, the found flag, the per-worker assignment registry
// and the pool of reclaimed blocks. Every operation runs under a single
// mutex; all operations are short and perform no I/O while holding it.
type Coordinator struct {
	mu sync.Mutex

	rangeEnd  int64
	blockUnit int64

	// nextOffset is the lower bound of the first never-issued block.
	// It only moves forward; ranges abandoned by disconnecting workers
	// go to the reclaimed pool instead of rolling the cursor back, so
	// concurrent disconnects can never cause a double issue.
	nextOffset int64

	found      bool
	foundValue int64

	workers   map[string]*worker
	reclaimed freeList
}

// New creates a coordinator over the keyspace [0, rangeEnd] with the
// given per-core block unit
func New(rangeEnd, blockUnit int64) *Coordinator {
	return &Coordinator{
		rangeEnd:  rangeEnd,
		blockUnit: blockUnit,
		workers:   make(map[string]*worker),
	}
}

// Attach creates a registry entry for a newly connected worker with the
// default core count of 1
func (c *Coordinator) Attach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.workers[id]; !ok {
		c.workers[id] = &worker{cores: 1}
		workersConnected.Inc()
	}
}

// Register records the declared core count for a worker. A repeated
// registration simply overwrites the previous value.
func (c *Coordinator) Register(id string, cores int) {
	if cores < 1 {
		cores = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.workers[id]
	if !ok {
		w = &worker{}
		c.workers[id] = w
		workersConnected.Inc()
	}
	w.cores = cores
}

// Allocate hands the worker its next block. The worker's previously
// outstanding block, if any, is dropped from the registry without
// reclaim first: a worker asking for more work is trusted to have
// finished its last block.
func (c *Coordinator) Allocate(id string) Grant {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.workers[id]
	if !ok {
		w = &worker{cores: 1}
		c.workers[id] = w
		workersConnected.Inc()
	}
	w.block = nil

	if c.found {
		return Grant{Kind: GrantStop}
	}

	size := c.blockUnit * int64(w.cores)

	// Reclaimed ranges are re-issued before the cursor advances
	if blk, ok := c.reclaimed.take(size); ok {
		w.block = &blk
		blocksIssued.Inc()
		return Grant{Kind: GrantWork, Block: blk}
	}

	if c.nextOffset > c.rangeEnd {
		return Grant{Kind: GrantNoWork}
	}

	blk := Block{Start: c.nextOffset, End: c.nextOffset + size - 1}
	if blk.End > c.rangeEnd {
		blk.End = c.rangeEnd
	}
	c.nextOffset = blk.End + 1
	nextOffsetGauge.Set(float64(c.nextOffset))

	w.block = &blk
	blocksIssued.Inc()
	return Grant{Kind: GrantWork, Block: blk}
}

// Release returns a worker's outstanding block to the reclaimed pool.
// Invoked on disconnect or session error, never on normal consumption.
func (c *Coordinator) Release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(id)
}

func (c *Coordinator) releaseLocked(id string) {
	w, ok := c.workers[id]
	if !ok || w.block == nil {
		return
	}
	c.reclaimed.insert(*w.block)
	w.block = nil
	blocksReclaimed.Inc()
}

// Detach releases the worker's outstanding block and removes it from
// the registry. Called exactly once per connection, on teardown.
func (c *Coordinator) Detach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.workers[id]; !ok {
		return
	}
	c.releaseLocked(id)
	delete(c.workers, id)
	workersConnected.Dec()
}

// RecordFound consumes the reporter's outstanding block (the match was
// inside it, so it is legitimately done) and flips the found flag.
// Returns true only for the first successful report; the caller must
// then broadcast stop. Later or duplicate reports are a no-op.
func (c *Coordinator) RecordFound(id string, value int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.workers[id]; ok {
		w.block = nil
	}

	if c.found {
		return false
	}
	c.found = true
	c.foundValue = value
	foundGauge.Set(1)
	return true
}

// Found reports whether a match has been recorded
func (c *Coordinator) Found() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.found
}

// FoundValue returns the matched value; ok is false until a match is
// recorded
func (c *Coordinator) FoundValue() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.foundValue, c.found
}

// AssignedBlock pairs a live worker with its outstanding block
type AssignedBlock struct {
	WorkerID string `json:"worker_id"`
	Cores    int    `json:"cores"`
	Block    Block  `json:"block"`
}

// Snapshot is a point-in-time view of the search state for the status
// endpoint
type Snapshot struct {
	RangeEnd   int64           `json:"range_end"`
	NextOffset int64           `json:"next_offset"`
	Found      bool            `json:"found"`
	FoundValue *int64          `json:"found_value,omitempty"`
	Workers    int             `json:"workers"`
	Assigned   []AssignedBlock `json:"assigned"`
	Reclaimed  []Block         `json:"reclaimed"`
}

// Snapshot captures the current search state under the lock
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		RangeEnd:   c.rangeEnd,
		NextOffset: c.nextOffset,
		Found:      c.found,
		Workers:    len(c.workers),
		Assigned:   make([]AssignedBlock, 0, len(c.workers)),
		Reclaimed:  c.reclaimed.all(),
	}
	if c.found {
		v := c.foundValue
		snap.FoundValue = &v
	}
	for id, w := range c.workers {
		if w.block != nil {
			snap.Assigned = append(snap.Assigned, AssignedBlock{
				WorkerID: id,
				Cores:    w.cores,
				Block:    *w.block,
			})
		}
	}
	return snap
}
